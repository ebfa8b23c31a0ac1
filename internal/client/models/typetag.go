package models

import (
	"errors"
	"strings"
)

var ErrMalformedTypeTag = errors.New("malformed type tag")

// TypeTagBase returns the part of a type tag before its parameter list.
func TypeTagBase(tag string) string {
	if i := strings.IndexByte(tag, '<'); i >= 0 {
		return strings.TrimSpace(tag[:i])
	}
	return strings.TrimSpace(tag)
}

// ExtractTypeParams returns the top-level generic parameters of a type tag,
// left to right. Nested parameters stay intact inside their token:
//
//	P::m::T<0x2::coin::Coin<0x2::sui::SUI>, 0xabc::nft::NFT>
//	-> ["0x2::coin::Coin<0x2::sui::SUI>", "0xabc::nft::NFT"]
//
// Best effort: the tag is not validated. An unclosed last parameter is
// still returned; scanning stops at the bracket closing the outer list.
func ExtractTypeParams(tag string) []string {
	params := []string{}

	start := strings.IndexByte(tag, '<')
	if start < 0 {
		return params
	}

	var cur strings.Builder
	flush := func() {
		if p := strings.TrimSpace(cur.String()); p != "" {
			params = append(params, p)
		}
		cur.Reset()
	}

	depth := 1
	for _, r := range tag[start+1:] {
		switch r {
		case '<':
			depth++
		case '>':
			depth--
			if depth == 0 {
				flush()
				return params
			}
		case ',':
			if depth == 1 {
				flush()
				continue
			}
		}
		cur.WriteRune(r)
	}
	flush()
	return params
}

// ValidateTypeTag checks that brackets balance and nothing follows the
// outer parameter list.
func ValidateTypeTag(tag string) error {
	if strings.TrimSpace(tag) == "" {
		return ErrMalformedTypeTag
	}
	depth := 0
	closed := false
	for _, r := range tag {
		if closed && r != ' ' {
			return ErrMalformedTypeTag
		}
		switch r {
		case '<':
			depth++
		case '>':
			depth--
			if depth < 0 {
				return ErrMalformedTypeTag
			}
			if depth == 0 {
				closed = true
			}
		}
	}
	if depth != 0 {
		return ErrMalformedTypeTag
	}
	return nil
}
