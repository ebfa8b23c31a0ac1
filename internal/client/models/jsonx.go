package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// U64 accepts a Move u64 rendered either as a JSON string or a number.
type U64 uint64

func (u *U64) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*u = 0
		return nil
	}
	s := string(b)
	if len(b) > 0 && b[0] == '"' {
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return fmt.Errorf("u64 %s: %w", string(b), err)
	}
	*u = U64(v)
	return nil
}

// OptionalID accepts an Option<ID> as null, a plain string, or the
// {"vec": [...]} form used by older JSON-RPC nodes.
type OptionalID string

func (o *OptionalID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*o = ""
		return nil
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*o = OptionalID(s)
		return nil
	}

	var wrapped struct {
		Vec []string `json:"vec"`
	}
	if err := json.Unmarshal(b, &wrapped); err != nil {
		return fmt.Errorf("option<ID>: %w", err)
	}
	if len(wrapped.Vec) > 0 {
		*o = OptionalID(wrapped.Vec[0])
	} else {
		*o = ""
	}
	return nil
}

// UID accepts an object id as a plain string or as {"id": "0x…"}.
type UID string

func (u *UID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*u = UID(s)
		return nil
	}
	var wrapped struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(b, &wrapped); err != nil {
		return fmt.Errorf("uid: %w", err)
	}
	*u = UID(wrapped.ID)
	return nil
}

// Balance accepts a Balance<T> as its bare value or as {"value": "…"}.
type Balance U64

func (bal *Balance) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '{' {
		var wrapped struct {
			Value U64 `json:"value"`
		}
		if err := json.Unmarshal(b, &wrapped); err != nil {
			return fmt.Errorf("balance: %w", err)
		}
		*bal = Balance(wrapped.Value)
		return nil
	}
	var v U64
	if err := v.UnmarshalJSON(b); err != nil {
		return err
	}
	*bal = Balance(v)
	return nil
}
