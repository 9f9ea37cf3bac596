// Package termdex is an in-memory term dictionary with substring matching.
//
// A dictionary holds entries (concepts with one or more terms), the
// dictionaries they belong to, and referring terms. GetMatchesForString
// ranks the terms that start with or contain a string, and mixes in
// number matches and a set of preloaded fixed terms on the first page.
//
// # Local dictionary
//
//	dict, _ := termdex.New(ctx)
//	_ = dict.LoadData(ctx, strings.NewReader(`
//	dictionaries:
//	  - id: BIO
//	    name: Biology
//	    entries:
//	      - {id: 1, terms: [cell, cyte]}
//	`))
//	ms, _ := dict.GetMatchesForString(ctx, "ce", termdex.MatchQuery{})
//
// # Redis or Valkey
//
//	dict, _ := termdex.New(ctx, termdex.WithValkey("localhost:6379", ""))
//
// # Remote, read-only
//
//	dict, _ := termdex.NewRemote("http://localhost:8080")
//	ms, _ := dict.GetMatchesForString(ctx, "ce", termdex.MatchQuery{})
package termdex
