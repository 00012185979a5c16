package extractor

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"intlscan/pkg/parser"
)

func setupExtractor(_ *testing.T) *Extractor {
	pm := parser.NewManager(nil)
	return NewExtractor(pm, nil)
}

func extract(t *testing.T, file, source string) ([]Key, []Diagnostic) {
	t.Helper()
	ext := setupExtractor(t)
	keys, diags, err := ext.ExtractKeys(file, []byte(source))
	require.NoError(t, err)
	return keys, diags
}

func fullKeys(keys []Key) []string {
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = k.FullKey
	}
	return out
}

func TestExtractKeys_UseTranslations(t *testing.T) {
	source := `
import {useTranslations} from 'next-intl';

export default function Checkout() {
  const t = useTranslations('Checkout');
  return (
    <div>
      <h1>{t('title')}</h1>
      <p>{t('subtitle')}</p>
      <p>{t('title')}</p>
    </div>
  );
}
`
	keys, diags := extract(t, "checkout.tsx", source)

	assert.Empty(t, diags)
	assert.Equal(t, []string{"Checkout.title", "Checkout.subtitle"}, fullKeys(keys))
}

func TestExtractKeys_PositionIsOneBased(t *testing.T) {
	source := `const t = useTranslations('NS');
t('only');
`
	keys, _ := extract(t, "pos.ts", source)

	require.Len(t, keys, 1)
	assert.Equal(t, uint32(2), keys[0].Line)
	assert.Equal(t, uint32(1), keys[0].Column)
	assert.Equal(t, "pos.ts", keys[0].File)
}

func TestExtractKeys_GetTranslationsObjectForm(t *testing.T) {
	source := `
import {getTranslations} from 'next-intl/server';

export async function generateMetadata() {
  const t = await getTranslations({locale: 'en', namespace: 'Metadata.Home'});
  return {title: t('title')};
}
`
	keys, diags := extract(t, "page.tsx", source)

	assert.Empty(t, diags)
	assert.Equal(t, []string{"Metadata.Home.title"}, fullKeys(keys))
}

func TestExtractKeys_GetTranslationsStringForm(t *testing.T) {
	source := `
const t = await getTranslations('Emails');
t('welcome');
`
	keys, _ := extract(t, "emails.ts", source)

	assert.Equal(t, []string{"Emails.welcome"}, fullKeys(keys))
}

func TestExtractKeys_MemberCall(t *testing.T) {
	source := `
const t = useTranslations('Legal');
t.rich('terms');
t.markup('privacy');
t.has('optional');
`
	keys, _ := extract(t, "legal.ts", source)

	assert.Equal(t, []string{"Legal.terms", "Legal.privacy", "Legal.optional"}, fullKeys(keys))
}

func TestExtractKeys_NonLiteralKeySkippedWithDiagnostic(t *testing.T) {
	source := `
const t = useTranslations('Nav');
const item = 'home';
t(item);
t(` + "`${item}.label`" + `);
t('static');
`
	keys, diags := extract(t, "nav.ts", source)

	assert.Equal(t, []string{"Nav.static"}, fullKeys(keys))
	require.Len(t, diags, 2)
	assert.Contains(t, diags[0].Message, "not a string literal")
}

func TestExtractKeys_NonLiteralNamespaceSkippedWithDiagnostic(t *testing.T) {
	source := `
const ns = 'Dyn';
const t = useTranslations(ns);
t('key');
`
	keys, diags := extract(t, "dyn.ts", source)

	assert.Empty(t, keys)
	require.NotEmpty(t, diags)
	assert.Contains(t, diags[0].Message, "no statically known namespace")
}

func TestExtractKeys_UnrelatedCallsIgnored(t *testing.T) {
	source := `
console.log('hello');
fetch('/api/items');
const t = useTranslations('Shop');
t('cart');
`
	keys, diags := extract(t, "shop.ts", source)

	assert.Empty(t, diags)
	assert.Equal(t, []string{"Shop.cart"}, fullKeys(keys))
}

func TestExtractKeys_ShadowingInnerBindingWins(t *testing.T) {
	source := `
const t = useTranslations('Outer');

function inner() {
  const t = useTranslations('Inner');
  return t('label');
}

t('label');
`
	keys, _ := extract(t, "shadow.ts", source)

	assert.ElementsMatch(t, []string{"Inner.label", "Outer.label"}, fullKeys(keys))
}

func TestExtractKeys_BlockScopedBindingNotVisibleOutside(t *testing.T) {
	source := `
function setup() {
  const t = useTranslations('Settings');
  t('inside');
}

t('outside');
`
	keys, diags := extract(t, "scope.ts", source)

	assert.Equal(t, []string{"Settings.inside"}, fullKeys(keys))
	require.Len(t, diags, 1)
	assert.Contains(t, diags[0].Message, "unresolved translation call: t")
}

func TestExtractKeys_ArrowFunctionScope(t *testing.T) {
	source := `
const Page = () => {
  const t = useTranslations('Page');
  const Section = () => <span>{t('section')}</span>;
  return <div>{t('body')}</div>;
};
`
	keys, diags := extract(t, "arrow.tsx", source)

	assert.Empty(t, diags)
	assert.ElementsMatch(t, []string{"Page.section", "Page.body"}, fullKeys(keys))
}

func TestExtractKeys_EmptyNamespace(t *testing.T) {
	source := `
const t = useTranslations('');
t('bare');
`
	keys, _ := extract(t, "bare.ts", source)

	assert.Equal(t, []string{"bare"}, fullKeys(keys))
}

func TestExtractKeys_EscapeSequenceInLiteral(t *testing.T) {
	source := `
const t = useTranslations('Quotes');
t('say \'hi\'');
t("double \" quote");
t('line\nbreak');
t('tab\there');
t('back\\slash');
t('unicode é and \u{1F600}');
`
	keys, _ := extract(t, "esc.ts", source)

	// Keys must carry the runtime string value, not the source spelling,
	// or lookups against the catalog never match.
	assert.Equal(t, []string{
		"Quotes.say 'hi'",
		`Quotes.double " quote`,
		"Quotes.line\nbreak",
		"Quotes.tab\there",
		`Quotes.back\slash`,
		"Quotes.unicode é and \U0001F600",
	}, fullKeys(keys))
}

func TestExtractKeys_JavaScriptSource(t *testing.T) {
	source := `
const t = useTranslations('Plain');
module.exports = () => t('js');
`
	keys, _ := extract(t, "plain.js", source)

	assert.Equal(t, []string{"Plain.js"}, fullKeys(keys))
}

func TestExtractKeys_SyntaxErrorIsParseError(t *testing.T) {
	ext := setupExtractor(t)

	_, _, err := ext.ExtractKeys("broken.ts", []byte("const t = useTranslations('X'\nfunction {{{"))
	require.Error(t, err)

	var perr *parser.ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "broken.ts", perr.File)
	assert.NotEmpty(t, perr.Errors)
}

func TestExtractKeys_NoBindings(t *testing.T) {
	keys, diags := extract(t, "empty.ts", "export const answer = 42;")

	assert.Empty(t, keys)
	assert.Empty(t, diags)
}

func TestExtractFile_RecordsBindingsAndRefs(t *testing.T) {
	ext := setupExtractor(t)

	source := []byte(`
const t = useTranslations('Cart');
t('total');
`)
	fe, err := ext.ExtractFile("cart.ts", source)
	require.NoError(t, err)

	require.Len(t, fe.Bindings, 1)
	assert.Equal(t, "t", fe.Bindings[0].LocalName)
	assert.Equal(t, []string{"Cart"}, fe.Bindings[0].Namespace)

	require.Len(t, fe.Refs, 1)
	assert.Equal(t, "t", fe.Refs[0].LocalName)
	assert.Equal(t, "total", fe.Refs[0].LeafKey)
}
