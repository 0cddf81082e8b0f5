package manga

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPickTitleFallsBackToRomanized(t *testing.T) {
	attributes := MangaAttributes{Title: LocalizedString{"ja-ro": "Foo"}}

	assert.Equal(t, "Foo", PickTitle(attributes, nil))
}

func TestPickTitlePrefersEnglish(t *testing.T) {
	attributes := MangaAttributes{Title: LocalizedString{"ja-ro": "Wanpisu", "en": "One Piece"}}

	assert.Equal(t, "One Piece", PickTitle(attributes, []string{"en"}))
}

func TestPickTitleUsesAltTitlesBeforeAnyLanguage(t *testing.T) {
	attributes := MangaAttributes{
		Title:     LocalizedString{"ko": "Korean"},
		AltTitles: []LocalizedString{{"fr": "French"}, {"en": "English"}},
	}

	assert.Equal(t, "English", PickTitle(attributes, []string{"en"}))
	assert.Equal(t, "Korean", PickTitle(attributes, []string{"de"}))
}

func TestPickTitleEmpty(t *testing.T) {
	assert.Equal(t, "", PickTitle(MangaAttributes{}, nil))
}

func TestLocalizedPickIsStable(t *testing.T) {
	localized := LocalizedString{"zh": "Z", "de": "D", "fr": ""}

	assert.Equal(t, "D", localized.Pick([]string{"en"}))
	assert.Equal(t, "Z", localized.Pick([]string{"zh"}))
	assert.Equal(t, "", LocalizedString(nil).Pick([]string{"en"}))
}

func TestCoverFileNameMissing(t *testing.T) {
	relationships := []Entity{
		{ID: "a1", Type: TypeAuthor, Attributes: AuthorAttributes{Name: "A"}},
		{ID: "c1", Type: TypeCoverArt},
	}

	assert.Equal(t, "", CoverFileName(relationships))
	assert.Equal(t, "", CoverFileName(nil))
}

func TestTagAndCreatorNames(t *testing.T) {
	attributes := MangaAttributes{Tags: []Entity{
		{ID: "t1", Type: TypeTag, Attributes: TagAttributes{Name: LocalizedString{"en": "Action"}}},
		{ID: "t2", Type: TypeTag},
		{ID: "t3", Type: TypeTag, Attributes: TagAttributes{Name: LocalizedString{"ja": "ロマンス"}}},
	}}
	assert.Equal(t, []string{"Action", "ロマンス"}, TagNames(attributes, nil))

	relationships := []Entity{
		{ID: "ar", Type: TypeArtist, Attributes: AuthorAttributes{Name: "Artist"}},
		{ID: "au", Type: TypeAuthor, Attributes: AuthorAttributes{Name: "Writer"}},
		{ID: "ar2", Type: TypeArtist, Attributes: AuthorAttributes{Name: "Writer"}},
	}
	assert.Equal(t, []string{"Writer", "Artist"}, CreatorNames(relationships))
}

func TestRequestOptionsCacheControl(t *testing.T) {
	assert.Equal(t, "", RequestOptions{}.CacheControl())
	assert.Equal(t, "no-store", RequestOptions{CacheMode: "no-store"}.CacheControl())
	assert.Equal(t, "max-age=60", RequestOptions{CacheMode: "no-store", Revalidate: 60e9}.CacheControl())
}
