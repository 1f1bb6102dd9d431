package pathmatch

import "testing"

func TestMatchWildcard(t *testing.T) {
	m := Compile([]string{"*.ini"})
	if !m.Match("desktop.ini") {
		t.Fatal("expected desktop.ini to match *.ini")
	}
	if m.Match("desktop.INI.bak") {
		t.Fatal("did not expect desktop.ini.bak to match *.ini")
	}
}

func TestMatchIsCaseInsensitive(t *testing.T) {
	m := Compile([]string{"thumbs.db"})
	if !m.Match("Thumbs.DB") {
		t.Fatal("expected case-insensitive match")
	}
}

func TestMatchAtPrefixWildcard(t *testing.T) {
	m := Compile([]string{"@*"})
	if !m.Match("@eaDir") {
		t.Fatal("expected @eaDir to match @*")
	}
	if m.Match("not-at-prefixed") {
		t.Fatal("did not expect unrelated name to match @*")
	}
}

func TestMatchAnchorsFullName(t *testing.T) {
	m := Compile([]string{"picasa.ini"})
	if m.Match("not-picasa.ini-either") {
		t.Fatal("pattern should anchor the entire name")
	}
}

func TestMatchMultiplePatterns(t *testing.T) {
	m := Compile([]string{"*picasa.ini", "Thumbs.db"})
	if !m.Match("xpicasa.ini") {
		t.Fatal("expected *picasa.ini to match xpicasa.ini")
	}
	if !m.Match("Thumbs.db") {
		t.Fatal("expected exact pattern to match")
	}
	if m.Match("other.txt") {
		t.Fatal("did not expect other.txt to match")
	}
}

func TestMatchEmptyPatternListNeverMatches(t *testing.T) {
	m := Compile(nil)
	if m.Match("anything") {
		t.Fatal("empty pattern list should never match")
	}
}

func TestMatchNilMatcherNeverMatches(t *testing.T) {
	var m *Matcher
	if m.Match("anything") {
		t.Fatal("nil matcher should never match")
	}
}

func TestMatchOneShotHelper(t *testing.T) {
	if !Match("*.jpg", "photo.JPG") {
		t.Fatal("expected one-shot Match to be case-insensitive")
	}
}
