package manga

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

type EntityType string

const (
	TypeManga    EntityType = "manga"
	TypeChapter  EntityType = "chapter"
	TypeTag      EntityType = "tag"
	TypeCoverArt EntityType = "cover_art"
	TypeAuthor   EntityType = "author"
	TypeArtist   EntityType = "artist"
)

// Attributes is the closed set of attribute payloads an Entity can carry.
// The concrete type follows Entity.Type; artists reuse AuthorAttributes.
type Attributes interface {
	entityType() EntityType
}

// LocalizedString maps a language code (en, ja-ro, ...) to text.
type LocalizedString map[string]string

// UnmarshalJSON accepts the empty array MangaDex sends instead of {}.
func (localized *LocalizedString) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" || strings.HasPrefix(trimmed, "[") {
		*localized = nil
		return nil
	}

	values := map[string]string{}
	if err := json.Unmarshal(data, &values); err != nil {
		return err
	}
	*localized = values
	return nil
}

type MangaAttributes struct {
	Title                  LocalizedString   `json:"title"`
	AltTitles              []LocalizedString `json:"altTitles"`
	Description            LocalizedString   `json:"description"`
	OriginalLanguage       string            `json:"originalLanguage"`
	LastVolume             string            `json:"lastVolume"`
	LastChapter            string            `json:"lastChapter"`
	PublicationDemographic string            `json:"publicationDemographic"`
	Status                 string            `json:"status"`
	Year                   int               `json:"year"`
	ContentRating          string            `json:"contentRating"`
	Tags                   []Entity          `json:"tags"`
	CreatedAt              time.Time         `json:"createdAt"`
	UpdatedAt              time.Time         `json:"updatedAt"`
}

type ChapterAttributes struct {
	Volume             string    `json:"volume"`
	Chapter            string    `json:"chapter"`
	Title              string    `json:"title"`
	TranslatedLanguage string    `json:"translatedLanguage"`
	Pages              int       `json:"pages"`
	ExternalURL        string    `json:"externalUrl"`
	PublishAt          time.Time `json:"publishAt"`
	ReadableAt         time.Time `json:"readableAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

type TagAttributes struct {
	Name  LocalizedString `json:"name"`
	Group string          `json:"group"`
}

type CoverArtAttributes struct {
	FileName    string `json:"fileName"`
	Volume      string `json:"volume"`
	Description string `json:"description"`
	Locale      string `json:"locale"`
}

// AuthorAttributes is shared by author and artist relationships.
type AuthorAttributes struct {
	Name string `json:"name"`
}

func (MangaAttributes) entityType() EntityType    { return TypeManga }
func (ChapterAttributes) entityType() EntityType  { return TypeChapter }
func (TagAttributes) entityType() EntityType      { return TypeTag }
func (CoverArtAttributes) entityType() EntityType { return TypeCoverArt }
func (AuthorAttributes) entityType() EntityType   { return TypeAuthor }

// Entity is the MangaDex resource envelope. Attributes is nil when the
// resource was referenced without being expanded, or when its type is not
// one this package models.
type Entity struct {
	ID            string
	Type          EntityType
	Related       string
	Attributes    Attributes
	Relationships []Entity
}

type entityJSON struct {
	ID            string          `json:"id"`
	Type          EntityType      `json:"type"`
	Related       string          `json:"related,omitempty"`
	Attributes    json.RawMessage `json:"attributes,omitempty"`
	Relationships []Entity        `json:"relationships,omitempty"`
}

func (entity *Entity) UnmarshalJSON(data []byte) error {
	var raw entityJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	attributes, err := decodeAttributes(raw.Type, raw.Attributes)
	if err != nil {
		return fmt.Errorf("decode %s %s attributes: %w", raw.Type, raw.ID, err)
	}

	*entity = Entity{
		ID:            raw.ID,
		Type:          raw.Type,
		Related:       raw.Related,
		Attributes:    attributes,
		Relationships: raw.Relationships,
	}
	return nil
}

func (entity Entity) MarshalJSON() ([]byte, error) {
	raw := entityJSON{
		ID:            entity.ID,
		Type:          entity.Type,
		Related:       entity.Related,
		Relationships: entity.Relationships,
	}
	if entity.Attributes != nil {
		attributes, err := json.Marshal(entity.Attributes)
		if err != nil {
			return nil, err
		}
		raw.Attributes = attributes
	}
	return json.Marshal(raw)
}

func decodeAttributes(entityType EntityType, data json.RawMessage) (Attributes, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}

	switch entityType {
	case TypeManga:
		return decodeInto[MangaAttributes](data)
	case TypeChapter:
		return decodeInto[ChapterAttributes](data)
	case TypeTag:
		return decodeInto[TagAttributes](data)
	case TypeCoverArt:
		return decodeInto[CoverArtAttributes](data)
	case TypeAuthor, TypeArtist:
		return decodeInto[AuthorAttributes](data)
	default:
		return nil, nil
	}
}

func decodeInto[T Attributes](data json.RawMessage) (Attributes, error) {
	var attributes T
	if err := json.Unmarshal(data, &attributes); err != nil {
		return nil, err
	}
	return attributes, nil
}

func (entity Entity) Manga() (MangaAttributes, bool) {
	attributes, ok := entity.Attributes.(MangaAttributes)
	return attributes, ok
}

func (entity Entity) Chapter() (ChapterAttributes, bool) {
	attributes, ok := entity.Attributes.(ChapterAttributes)
	return attributes, ok
}

func (entity Entity) Tag() (TagAttributes, bool) {
	attributes, ok := entity.Attributes.(TagAttributes)
	return attributes, ok
}

func (entity Entity) CoverArt() (CoverArtAttributes, bool) {
	attributes, ok := entity.Attributes.(CoverArtAttributes)
	return attributes, ok
}

func (entity Entity) Author() (AuthorAttributes, bool) {
	attributes, ok := entity.Attributes.(AuthorAttributes)
	return attributes, ok
}

// Collection is a paginated list envelope.
type Collection struct {
	Result   string   `json:"result"`
	Response string   `json:"response"`
	Data     []Entity `json:"data"`
	Limit    int      `json:"limit"`
	Offset   int      `json:"offset"`
	Total    int      `json:"total"`
}

// IDs returns the entity ids in page order.
func (collection *Collection) IDs() []string {
	if collection == nil {
		return nil
	}
	ids := make([]string, 0, len(collection.Data))
	for _, entity := range collection.Data {
		ids = append(ids, entity.ID)
	}
	return ids
}
