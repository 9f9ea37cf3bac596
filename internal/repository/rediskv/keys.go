package rediskv

// keys builds the Redis key layout under a common prefix:
//
//	<p>dicts              set of dictionary ids
//	<p>dict:<id>          msgpack DictInfo
//	<p>dict:<id>:entries  set of entry ids owned by the dictionary
//	<p>entries            set of all entry ids
//	<p>entry:<id>         msgpack Entry
//	<p>refterms           set of referring terms
type keys struct {
	prefix string
}

func (k keys) dicts() string                { return k.prefix + "dicts" }
func (k keys) dict(id string) string        { return k.prefix + "dict:" + id }
func (k keys) dictEntries(id string) string { return k.prefix + "dict:" + id + ":entries" }
func (k keys) entries() string              { return k.prefix + "entries" }
func (k keys) entry(id string) string       { return k.prefix + "entry:" + id }
func (k keys) refTerms() string             { return k.prefix + "refterms" }

func (k keys) entryKeys(ids []string) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = k.entry(id)
	}
	return out
}

func (k keys) dictKeys(ids []string) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = k.dict(id)
	}
	return out
}
