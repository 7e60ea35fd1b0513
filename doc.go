// Package anirec embeds the anime recommendation engine as a library.
//
// The Client loads the catalog from a data directory and answers the same
// queries the HTTP API serves, without running a server:
//
//	client, err := anirec.New(ctx, anirec.WithDataDir("data"))
//	if err != nil { ... }
//	defer client.Close()
//
//	titles := client.Suggest(ctx, "nar")
//	recs, err := client.Recommend(ctx, "Naruto")
package anirec
