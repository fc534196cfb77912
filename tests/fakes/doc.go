// Package fakes provides test doubles for the AWS clients used by the
// secret store.
//
// Fakes are manually implemented (not generated) to provide precise control
// over test behavior.
//
// Usage:
//
//	sm := fakes.NewFakeSecretsManagerClient()
//	sm.AddSecretString("myapp/dev", `{"API_KEY":"abc"}`)
//	store, err := secretstore.New(ctx, secretstore.StoreConfig{SecretID: "myapp/dev"},
//	    secretstore.WithClients(sm, fakes.NewFakeSTSClient()))
package fakes
