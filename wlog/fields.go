package wlog

// Fields carries structured key/value context attached to a log entry,
// mirroring nabbar-golib/logger/fields.Fields.
type Fields map[string]interface{}

// Clone returns a shallow copy so callers can extend a base field set
// without mutating it.
func (f Fields) Clone() Fields {
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// With returns a new Fields value with the given key/value merged in.
func (f Fields) With(key string, value interface{}) Fields {
	out := f.Clone()
	out[key] = value
	return out
}
