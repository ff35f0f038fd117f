package rewrite

import (
	"slices"
	"testing"

	"github.com/simonhull/vcardtool/internal/types"
)

func newRewriter(t *testing.T, version types.Version, stripSentinel bool) *Rewriter {
	t.Helper()
	rw, err := New(version, stripSentinel)
	if err != nil {
		t.Fatalf("New(%s): %v", version, err)
	}
	return rw
}

func TestRewrite30(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"version pinned", "VERSION:2.1\n", "VERSION:3.0\n"},
		{"photo marker", "PHOTO;ENCODING=BASE64;JPEG:/9j/4AAQ\n", "PHOTO;ENCODING=b;TYPE=JPEG:/9j/4AAQ\n"},
		{"x-internet removed", "EMAIL;X-INTERNET:jane@example.com\n", "EMAIL:jane@example.com\n"},
		{"x-internet before other param", "EMAIL;X-INTERNET;HOME:jane@example.com\n", "EMAIL;TYPE=home:jane@example.com\n"},
		{
			"android nickname",
			"X-ANDROID-CUSTOM:vnd.android.cursor.item/nickname;Johnny;1;;;;;;;;;;;;;\n",
			"NICKNAME:Johnny\n",
		},
		{"jabber field", "X-JABBER:jane@jabber.org\n", "IMPP:xmpp:jane@jabber.org\n"},
		{"jabber field with type", "X-JABBER;HOME:jane@jabber.org\n", "IMPP;TYPE=home:xmpp:jane@jabber.org\n"},
		{"icq field", "X-ICQ:123456\n", "IMPP:icq:123456\n"},
		{"bare type pair", "TEL;CELL;VOICE:+15551234\n", "TEL;TYPE=cell,voice:+15551234\n"},
		{"bare type with pref", "TEL;CELL;PREF:+15551234\n", "TEL;TYPE=cell,pref:+15551234\n"},
		{"address type", "ADR;HOME:;;Main St 1;Springfield;;12345;USA\n", "ADR;TYPE=home:;;Main St 1;Springfield;;12345;USA\n"},
		{"pref after explicit type", "EMAIL;TYPE=INTERNET;PREF:jane@example.com\n", "EMAIL;TYPE=INTERNET;TYPE=PREF:jane@example.com\n"},
		{"jabber-looking email", "EMAIL:jane@jabber.example.org\n", "IMPP:xmpp:jane@jabber.example.org\n"},
		{"regular email untouched", "EMAIL:jane@example.com\n", "EMAIL:jane@example.com\n"},
		{"mobile typo", "TEL;X-MOBIL:+15551234\n", "TEL;TYPE=cell:+15551234\n"},
		{"sentinel kept without option", "FN:Jane Doe$\n", "FN:Jane Doe$\n"},
		{"continuation untouched", " VERSION:2.1\n", " VERSION:2.1\n"},
		{"unrelated property", "NOTE:TEL;CELL:+1\n", "NOTE:TEL;CELL:+1\n"},
	}

	rw := newRewriter(t, types.Version30, false)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := rw.Rewrite(tt.in); got != tt.want {
				t.Errorf("Rewrite(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestRewrite40(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"version pinned", "VERSION:2.1\n", "VERSION:4.0\n"},
		{"photo data uri", "PHOTO;ENCODING=BASE64;JPEG:/9j/4AAQ\n", "PHOTO:data:image/jpeg;base64,/9j/4AAQ\n"},
		{"pref parameter", "EMAIL;TYPE=INTERNET;PREF:jane@example.com\n", "EMAIL;TYPE=INTERNET;PREF=1:jane@example.com\n"},
		{"bare type pair", "TEL;CELL;VOICE:+15551234\n", "TEL;TYPE=cell,voice:+15551234\n"},
	}

	rw := newRewriter(t, types.Version40, false)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := rw.Rewrite(tt.in); got != tt.want {
				t.Errorf("Rewrite(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestRewrite_StripSentinel(t *testing.T) {
	rw := newRewriter(t, types.Version30, true)

	rules := rw.Rules()
	if rules[len(rules)-1].Name != RuleStripSentinel {
		t.Errorf("last rule = %q, want %q", rules[len(rules)-1].Name, RuleStripSentinel)
	}

	tests := []struct {
		in   string
		want string
	}{
		{"FN:Jane Doe$\n", "FN:Jane Doe\n"},
		{"N:Doe;Jane;;;$\n", "N:Doe;Jane;;;\n"},
		{"NOTE:costs 5$\n", "NOTE:costs 5$\n"},
		{"FN:Jane Doe\n", "FN:Jane Doe\n"},
		{"FN:a$b$\n", "FN:a$b\n"},
		{"FN:a$b\n", "FN:a$b\n"},
		{"FN:Jane$$\n", "FN:Jane\n"},
		{"FN:$\n", "FN:$\n"},
	}
	for _, tt := range tests {
		if got := rw.Rewrite(tt.in); got != tt.want {
			t.Errorf("Rewrite(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRewrite_Idempotent(t *testing.T) {
	corpus := []string{
		"VERSION:2.1\n",
		"PHOTO;ENCODING=BASE64;JPEG:/9j/4AAQ\n",
		"EMAIL;X-INTERNET;PREF:jane@example.com\n",
		"X-ANDROID-CUSTOM:vnd.android.cursor.item/nickname;Johnny;1;;;;;;;;;;;;;\n",
		"X-JABBER;HOME:jane@jabber.org\n",
		"X-ICQ:123456\n",
		"TEL;CELL;VOICE:+15551234\n",
		"TEL;HOME;PREF:+15550000\n",
		"EMAIL;TYPE=INTERNET;PREF:jane@example.com\n",
		"EMAIL:jane@jabber.example.org\n",
		"TEL;X-MOBIL:+15551234\n",
		"FN:Jane Doe$\n",
		"FN:a$b$\n",
		"N:Doe;Jane;;;$$\n",
		"N:Doe;Jane;;;\n",
		"ADR;WORK;PREF:;;Main St 1;Springfield;;12345;USA\n",
		" continuation line\n",
		"URL:https://example.com/a;b\n",
	}

	for _, version := range []types.Version{types.Version30, types.Version40} {
		for _, strip := range []bool{false, true} {
			rw := newRewriter(t, version, strip)
			for _, line := range corpus {
				once := rw.Rewrite(line)
				twice := rw.Rewrite(once)
				if once != twice {
					t.Errorf("version %s strip=%v: Rewrite not idempotent for %q: %q -> %q",
						version, strip, line, once, twice)
				}
			}
		}
	}
}

// The bare-type rule must run before the preference rule: once PREF has
// become TYPE=PREF, the remaining bare tokens can no longer be collected.
func TestRewrite_TypeParamsBeforePref(t *testing.T) {
	for _, rules := range [][]types.Rule{Rules30(), Rules40()} {
		typeIdx := slices.IndexFunc(rules, func(r types.Rule) bool { return r.Name == RuleTypeParams })
		prefIdx := slices.IndexFunc(rules, func(r types.Rule) bool { return r.Name == RulePref })
		if typeIdx < 0 || prefIdx < 0 {
			t.Fatal("rule set is missing the type-params or pref rule")
		}
		if typeIdx >= prefIdx {
			t.Errorf("type-params rule at %d must precede pref rule at %d", typeIdx, prefIdx)
		}
	}

	line := "TEL;CELL;PREF:+15551234\n"
	canonical := NewWithRules(Rules30()...)
	if got := canonical.Rewrite(line); got != "TEL;TYPE=cell,pref:+15551234\n" {
		t.Errorf("canonical order: Rewrite(%q) = %q", line, got)
	}

	swapped := Rules30()
	typeIdx := slices.IndexFunc(swapped, func(r types.Rule) bool { return r.Name == RuleTypeParams })
	prefIdx := slices.IndexFunc(swapped, func(r types.Rule) bool { return r.Name == RulePref })
	swapped[typeIdx], swapped[prefIdx] = swapped[prefIdx], swapped[typeIdx]

	if got := NewWithRules(swapped...).Rewrite(line); got != "TEL;CELL;TYPE=PREF:+15551234\n" {
		t.Errorf("swapped order: Rewrite(%q) = %q, want the bare CELL left behind", line, got)
	}
}

func TestRules_Order(t *testing.T) {
	want := []string{
		RuleVersion, RulePhoto, RuleXInternet, RuleAndroidNickname, RuleJabber, RuleICQ,
		RuleTypeParams, RulePref, RuleJabberEmail, RuleMobileTypo,
	}

	for _, rules := range [][]types.Rule{Rules30(), Rules40()} {
		names := make([]string, len(rules))
		for i, r := range rules {
			names[i] = r.Name
		}
		if !slices.Equal(names, want) {
			t.Errorf("rule order = %v, want %v", names, want)
		}
	}
}

func TestNew_UnknownVersion(t *testing.T) {
	if _, err := New(types.VersionUnknown, false); err == nil {
		t.Error("expected error for a version without rules")
	}
}

func TestNewWithRules_Copies(t *testing.T) {
	rules := Rules30()
	rw := NewWithRules(rules...)
	rules[0] = StripSentinel()

	if rw.Rules()[0].Name != RuleVersion {
		t.Error("NewWithRules must not alias the caller's slice")
	}
}
