package index

// Row is one indexed audit record: the timestamp, content fingerprint,
// producer label, and the payload's canonical JSON text.
type Row struct {
	TS      int64
	SHA     string
	Source  string
	Payload string
}
