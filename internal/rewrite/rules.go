package rewrite

import (
	"regexp"
	"strings"

	"github.com/simonhull/vcardtool/internal/registry"
	"github.com/simonhull/vcardtool/internal/types"
)

func init() {
	registry.Register(types.Version30, Rules30)
	registry.Register(types.Version40, Rules40)
}

// Rule names, in application order.
const (
	RuleVersion         = "version"
	RulePhoto           = "photo"
	RuleXInternet       = "x-internet"
	RuleAndroidNickname = "android-nickname"
	RuleJabber          = "x-jabber"
	RuleICQ             = "x-icq"
	RuleTypeParams      = "type-params"
	RulePref            = "pref"
	RuleJabberEmail     = "jabber-email"
	RuleMobileTypo      = "x-mobil"
	RuleStripSentinel   = "strip-sentinel"
)

// Patterns are shared by both versions.
var (
	versionRe         = regexp.MustCompile(`^VERSION:.*`)
	photoRe           = regexp.MustCompile(`^PHOTO;ENCODING=BASE64;JPEG:`)
	xInternetRe       = regexp.MustCompile(`;X-INTERNET([;:])`)
	androidNicknameRe = regexp.MustCompile(`^X-ANDROID-CUSTOM:vnd\.android\.cursor\.item/nickname;([^;]+);.*`)
	jabberRe          = regexp.MustCompile(`^X-JABBER(;?.*):(.+)`)
	icqRe             = regexp.MustCompile(`^X-ICQ(;?.*):(.+)`)
	prefRe            = regexp.MustCompile(`;PREF([;:])`)
	jabberEmailRe     = regexp.MustCompile(`^EMAIL:([^@]+@jabber.*)`)
	mobileTypoRe      = regexp.MustCompile(`^TEL;TYPE=x-mobil:(.*)`)
	sentinelRe        = regexp.MustCompile(`^(N|FN):(.+?)\$+(\n?)$`)

	// Parameters up to the value separator, with no '=' in between: bare
	// type tokens such as "CELL;VOICE".
	typeParamsRe = regexp.MustCompile(`^(TEL|EMAIL|ADR|URL|LABEL|IMPP);([^:=]+:)`)
)

// Rules30 returns the rule set converting vCard 2.1 to vCard 3.0.
func Rules30() []types.Rule {
	return []types.Rule{
		versionRule(types.Version30),
		{Name: RulePhoto, Pattern: photoRe, Template: "PHOTO;ENCODING=b;TYPE=JPEG:"},
		{Name: RuleXInternet, Pattern: xInternetRe, Template: "${1}"},
		{Name: RuleAndroidNickname, Pattern: androidNicknameRe, Template: "NICKNAME:${1}"},
		{Name: RuleJabber, Pattern: jabberRe, Template: "IMPP${1}:xmpp:${2}"},
		{Name: RuleICQ, Pattern: icqRe, Template: "IMPP${1}:icq:${2}"},
		typeParamsRule(),
		{Name: RulePref, Pattern: prefRe, Template: ";TYPE=PREF${1}"},
		{Name: RuleJabberEmail, Pattern: jabberEmailRe, Template: "IMPP:xmpp:${1}"},
		{Name: RuleMobileTypo, Pattern: mobileTypoRe, Template: "TEL;TYPE=cell:${1}"},
	}
}

// Rules40 returns the rule set converting vCard 2.1 to vCard 4.0.
//
// It differs from Rules30 in the VERSION value, in embedding photos as data
// URIs and in writing preference as PREF=1.
func Rules40() []types.Rule {
	rules := Rules30()
	for i, r := range rules {
		switch r.Name {
		case RuleVersion:
			rules[i] = versionRule(types.Version40)
		case RulePhoto:
			rules[i].Template = "PHOTO:data:image/jpeg;base64,"
		case RulePref:
			rules[i].Template = ";PREF=1${1}"
		}
	}
	return rules
}

// StripSentinel returns the rule removing trailing "$" characters from N and
// FN values. A "$" inside the value is kept.
func StripSentinel() types.Rule {
	return types.Rule{Name: RuleStripSentinel, Pattern: sentinelRe, Template: "${1}:${2}${3}"}
}

func versionRule(v types.Version) types.Rule {
	return types.Rule{Name: RuleVersion, Pattern: versionRe, Template: "VERSION:" + v.String()}
}

// typeParamsRule turns bare type tokens into one TYPE parameter:
//
//	TEL;CELL;VOICE:+49123456789  ->  TEL;TYPE=cell,voice:+49123456789
func typeParamsRule() types.Rule {
	return types.Rule{
		Name:    RuleTypeParams,
		Pattern: typeParamsRe,
		Func: func(groups []string) string {
			return groups[1] + ";TYPE=" + strings.ReplaceAll(strings.ToLower(groups[2]), ";", ",")
		},
	}
}
