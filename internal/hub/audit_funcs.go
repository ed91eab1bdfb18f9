package hub

import (
	"context"
	"fmt"

	"github.com/clognichain/clogni/internal/audit"
	"github.com/clognichain/clogni/internal/payload"
	"github.com/clognichain/clogni/internal/token"
)

// RegisterAuditFuncs binds the audit-trail operations onto the hub:
// ingest, tail, search, stats, and parse. These are the same four core
// operations the CLI exposes, plus the tokenizer.
func RegisterAuditFuncs(h *Hub, logger *audit.Logger) {
	h.Register("ingest", func(ctx context.Context, args payload.Object) (payload.Value, error) {
		source, err := stringArg(args, "source")
		if err != nil {
			return nil, err
		}
		p, ok := args["payload"]
		if !ok {
			return nil, fmt.Errorf("missing argument %q", "payload")
		}

		rec, err := logger.Append(ctx, source, p)
		if err != nil {
			return nil, err
		}
		return rec.Envelope(), nil
	})

	h.Register("tail", func(ctx context.Context, args payload.Object) (payload.Value, error) {
		n, err := intArg(args, "n", 10)
		if err != nil {
			return nil, err
		}

		records, err := logger.Tail(ctx, int(n))
		if err != nil {
			return nil, err
		}
		return recordsValue(records), nil
	})

	h.Register("search", func(ctx context.Context, args payload.Object) (payload.Value, error) {
		term, err := stringArg(args, "term")
		if err != nil {
			return nil, err
		}
		limit, err := intArg(args, "limit", 10)
		if err != nil {
			return nil, err
		}

		records, err := logger.Search(ctx, term, int(limit))
		if err != nil {
			return nil, err
		}
		return recordsValue(records), nil
	})

	h.Register("stats", func(ctx context.Context, args payload.Object) (payload.Value, error) {
		count, err := logger.Count(ctx)
		if err != nil {
			return nil, err
		}
		return payload.Object{"entries": payload.Int(count)}, nil
	})

	h.Register("parse", func(ctx context.Context, args payload.Object) (payload.Value, error) {
		lang := "ja"
		if _, ok := args["lang"]; ok {
			var err error
			lang, err = stringArg(args, "lang")
			if err != nil {
				return nil, err
			}
		}
		text, err := stringArg(args, "text")
		if err != nil {
			return nil, err
		}

		return token.NewParser(lang).Parse(text), nil
	})
}

func recordsValue(records []audit.Record) payload.Array {
	arr := make(payload.Array, len(records))
	for i, rec := range records {
		arr[i] = rec.Envelope()
	}
	return arr
}

func stringArg(args payload.Object, key string) (string, error) {
	v, ok := args[key]
	if !ok {
		return "", fmt.Errorf("missing argument %q", key)
	}
	s, ok := v.(payload.String)
	if !ok {
		return "", fmt.Errorf("argument %q must be a string", key)
	}
	return string(s), nil
}

func intArg(args payload.Object, key string, def int64) (int64, error) {
	v, ok := args[key]
	if !ok {
		return def, nil
	}
	n, ok := v.(payload.Int)
	if !ok {
		return 0, fmt.Errorf("argument %q must be an integer", key)
	}
	return int64(n), nil
}
