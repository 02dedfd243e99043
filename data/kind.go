package data

import "fmt"

// Kind identifies the type of an item in the project tree.
type Kind int

// Kinds an item can have. Footage is refined into its media type where known.
const (
	KindFolder      Kind = iota // Container for other items
	KindComposition             // Timeline composition
	KindFootage                 // Footage of unknown media type
	KindImage                   // Still image footage
	KindAudio                   // Audio-only footage
	KindVideo                   // Video footage
	KindSolid                   // Solid color footage
)

func (k Kind) String() string {
	switch k {
	case KindFolder:
		return "folder"
	case KindComposition:
		return "composition"
	case KindFootage:
		return "footage"
	case KindImage:
		return "image"
	case KindAudio:
		return "audio"
	case KindVideo:
		return "video"
	case KindSolid:
		return "solid"
	default:
		return "unknown"
	}
}

// ParseKind returns the kind for its string form.
func ParseKind(s string) (Kind, bool) {
	for k := KindFolder; k <= KindSolid; k++ {
		if k.String() == s {
			return k, true
		}
	}
	return 0, false
}

func (k Kind) MarshalText() ([]byte, error) {
	if k < KindFolder || k > KindSolid {
		return nil, fmt.Errorf("unknown kind %d", int(k))
	}
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(text []byte) error {
	parsed, ok := ParseKind(string(text))
	if !ok {
		return fmt.Errorf("unknown kind '%s'", text)
	}
	*k = parsed
	return nil
}

func (k Kind) IsContainer() bool {
	return k == KindFolder
}

func (k Kind) IsFootage() bool {
	switch k {
	case KindFootage, KindImage, KindAudio, KindVideo, KindSolid:
		return true
	}
	return false
}

// Category selects one of the typed item collections.
type Category int

const (
	CategoryAll Category = iota
	CategoryFolders
	CategoryCompositions
	CategoryFootage
	CategoryImages
	CategoryAudio
	CategoryVideos
	CategorySolids
)

// Categories returns every per-type category, without CategoryAll.
func Categories() []Category {
	return []Category{
		CategoryFolders,
		CategoryCompositions,
		CategoryFootage,
		CategoryImages,
		CategoryAudio,
		CategoryVideos,
		CategorySolids,
	}
}

func (c Category) String() string {
	switch c {
	case CategoryAll:
		return "all"
	case CategoryFolders:
		return "folders"
	case CategoryCompositions:
		return "compositions"
	case CategoryFootage:
		return "footage"
	case CategoryImages:
		return "images"
	case CategoryAudio:
		return "audio"
	case CategoryVideos:
		return "videos"
	case CategorySolids:
		return "solids"
	default:
		return "unknown"
	}
}

// Contains reports whether items of kind k belong to the category.
func (c Category) Contains(k Kind) bool {
	switch c {
	case CategoryAll:
		return true
	case CategoryFolders:
		return k == KindFolder
	case CategoryCompositions:
		return k == KindComposition
	case CategoryFootage:
		return k.IsFootage()
	case CategoryImages:
		return k == KindImage
	case CategoryAudio:
		return k == KindAudio
	case CategoryVideos:
		return k == KindVideo
	case CategorySolids:
		return k == KindSolid
	default:
		return false
	}
}
