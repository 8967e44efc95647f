package model

// KV is one entry of a KeywordList, Reactor's ordered association-list
// container (the Go analogue of an Erlang/Elixir keyword list).
type KV struct {
	Key   string
	Value interface{}
}

// KeywordList is an ordered list of key/value pairs, fetched by key exactly
// like a map but preserving declaration order.
type KeywordList []KV

// Fetch returns the first value associated with key.
func (kl KeywordList) Fetch(key string) (interface{}, bool) {
	for _, kv := range kl {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return nil, false
}
