package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"

	"github.com/naveenspark/vendora/pkg/client"
	"github.com/naveenspark/vendora/pkg/domain"
)

var errMissingID = errors.New("missing id")

func requireID(id string) error {
	if id == "" {
		return &client.APIError{Kind: client.KindRequest, Message: client.DefaultErrorMessage, Err: errMissingID}
	}
	return nil
}

// decodeList unwraps {"<key>": [...], "total": n}. A bare array is accepted
// too. Elements that do not decode into T are skipped; a missing total falls
// back to the number of items.
func decodeList[T any](raw json.RawMessage, key string, p Pagination) *domain.PagedResult[T] {
	res := &domain.PagedResult[T]{Page: p.Page, Limit: p.Limit}

	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '[' {
		res.Items = decodeItems[T](raw)
		res.Normalize()
		return res
	}

	var env map[string]json.RawMessage
	if err := json.Unmarshal(raw, &env); err != nil {
		res.Normalize()
		return res
	}
	res.Items = decodeItems[T](env[key])
	res.Total = decodeInt(env["total"], len(res.Items))
	if res.Page == 0 {
		res.Page = decodeInt(env["page"], 1)
	}
	if res.Limit == 0 {
		res.Limit = decodeInt(env["limit"], 0)
	}
	res.Normalize()
	return res
}

func decodeItems[T any](raw json.RawMessage) []T {
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return []T{}
	}
	items := make([]T, 0, len(elems))
	for _, e := range elems {
		if bytes.Equal(bytes.TrimSpace(e), []byte("null")) {
			continue
		}
		var v T
		if err := json.Unmarshal(aliasID(e), &v); err != nil {
			continue
		}
		items = append(items, v)
	}
	return items
}

// decodeInt accepts a JSON number or a numeric string.
func decodeInt(raw json.RawMessage, fallback int) int {
	if len(raw) == 0 {
		return fallback
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return fallback
		}
		n = json.Number(s)
	}
	if i, err := n.Int64(); err == nil {
		return int(i)
	}
	if f, err := strconv.ParseFloat(n.String(), 64); err == nil {
		return int(f)
	}
	return fallback
}

// decodeOne accepts both {"<key>": {...}} and a bare object.
func decodeOne[T any](raw json.RawMessage, key string) (*T, error) {
	raw = bytes.TrimSpace(raw)
	var env map[string]json.RawMessage
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, decodeError(err)
	}
	if inner, ok := env[key]; ok {
		if trimmed := bytes.TrimSpace(inner); len(trimmed) > 0 && trimmed[0] == '{' {
			raw = trimmed
		}
	}
	var v T
	if err := json.Unmarshal(aliasID(raw), &v); err != nil {
		return nil, decodeError(err)
	}
	return &v, nil
}

func decodeError(err error) error {
	return &client.APIError{Kind: client.KindDecode, Message: client.DefaultErrorMessage, Err: err}
}

// aliasID copies a Mongo-style "_id" to "id" when the object has no "id".
func aliasID(raw json.RawMessage) json.RawMessage {
	if !bytes.Contains(raw, []byte(`"_id"`)) {
		return raw
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return raw
	}
	if _, ok := obj["id"]; ok {
		return raw
	}
	obj["id"] = obj["_id"]
	out, err := json.Marshal(obj)
	if err != nil {
		return raw
	}
	return out
}
