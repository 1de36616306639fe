package agent

import "testing"

func TestTokenSink_SendAndReceive(t *testing.T) {
	s := NewTokenSink(2)
	s.Send("a")
	s.Send("b")
	s.Close()

	var got []string
	for tok := range s.Tokens() {
		got = append(got, tok)
	}
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("got = %v, want [a b]", got)
	}
}

func TestTokenSink_DropsWhenFull(t *testing.T) {
	s := NewTokenSink(1)
	s.Send("kept")
	s.Send("dropped-1")
	s.Send("dropped-2")

	if s.Dropped() != 2 {
		t.Errorf("Dropped() = %d, want 2", s.Dropped())
	}
	s.Close()

	var got []string
	for tok := range s.Tokens() {
		got = append(got, tok)
	}
	if len(got) != 1 || got[0] != "kept" {
		t.Errorf("got = %v, want [kept]", got)
	}
}

func TestTokenSink_NilSinkIsNoop(t *testing.T) {
	var s *TokenSink
	s.Send("x") // must not panic
	if s.Dropped() != 0 {
		t.Errorf("Dropped() on nil sink = %d, want 0", s.Dropped())
	}
	s.Close() // must not panic
}

func TestTokenSink_EmptyTokenIsIgnored(t *testing.T) {
	s := NewTokenSink(1)
	s.Send("")
	s.Send("real")
	s.Close()

	var got []string
	for tok := range s.Tokens() {
		got = append(got, tok)
	}
	if len(got) != 1 || got[0] != "real" {
		t.Errorf("got = %v, want [real]", got)
	}
}
