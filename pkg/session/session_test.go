package session

import (
	"errors"
	"strings"
	"testing"
)

func TestRoundTrip(t *testing.T) {
	sessions := []Session{
		{FileID: "F123", ChannelID: "C456", AnchorMessageID: "1724853600.000100"},
		{FileID: "F123", ChannelID: "C456"}, // anchor not yet assigned
		{FileID: "F-weird/&?=", ChannelID: "C1", AnchorMessageID: "1.2"},
		{FileID: "F1", ChannelID: "C1", NegotiationID: "9f1c2d3e-0000-4000-8000-000000000001"},
	}

	for _, want := range sessions {
		got, err := Decode(Encode(want))
		if err != nil {
			t.Fatalf("decode(encode(%+v)): %v", want, err)
		}
		if got != want {
			t.Errorf("round trip: got %+v, want %+v", got, want)
		}
	}
}

func TestAnchorPatchedAfterPost(t *testing.T) {
	s, err := Decode(Encode(Session{FileID: "F1", ChannelID: "C1"}))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if s.AnchorMessageID != "" {
		t.Fatalf("expected empty anchor, got %q", s.AnchorMessageID)
	}

	s.AnchorMessageID = "1724853600.000100"
	got, err := Decode(Encode(s))
	if err != nil {
		t.Fatalf("decode after patch: %v", err)
	}
	if got.AnchorMessageID != "1724853600.000100" {
		t.Errorf("anchor lost: got %q", got.AnchorMessageID)
	}
}

func TestNegotiationIDSurvivesAnchorPatch(t *testing.T) {
	s, err := Decode(Encode(Session{FileID: "F1", ChannelID: "C1", NegotiationID: "n-1"}))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	s.AnchorMessageID = "1724853600.000100"
	got, err := Decode(Encode(s))
	if err != nil {
		t.Fatalf("decode after patch: %v", err)
	}
	if got.NegotiationID != "n-1" {
		t.Errorf("negotiation id lost: got %q", got.NegotiationID)
	}
}

func TestTokenIsOpaque(t *testing.T) {
	token := Encode(Session{FileID: "F1", ChannelID: "C1"})
	if strings.ContainsAny(token, " \"{}") {
		t.Errorf("token not safe to embed: %q", token)
	}
}

func TestDecodeRejectsMalformed(t *testing.T) {
	cases := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"no version", "eyJmaWxlX2lkIjoiRjEifQ"},
		{"wrong version", "v2.eyJmaWxlX2lkIjoiRjEifQ"},
		{"bad base64", "v1.!!!not-base64!!!"},
		{"bad json", "v1." + "bm90IGpzb24"},
		{"missing fields", Encode(Session{})},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode(tc.token)
			if err == nil {
				t.Fatalf("expected error for %q", tc.token)
			}
			if !errors.Is(err, ErrCorrelation) {
				t.Errorf("expected ErrCorrelation, got %v", err)
			}
		})
	}
}
