package entities

import (
	"forever-us/domain/core/valueobjects"
)

// DefaultAccentColor is the accent used by the seed theme
const DefaultAccentColor = "#ec4899"

// MusicOption is a suggested background track
type MusicOption struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// MusicOptions returns the built-in background music suggestions
func MusicOptions() []MusicOption {
	return []MusicOption{
		{Name: "Love Story (Taylor Swift Instrumental)", URL: "https://www.soundhelix.com/examples/mp3/SoundHelix-Song-1.mp3"},
		{Name: "Beautiful in White", URL: "https://www.soundhelix.com/examples/mp3/SoundHelix-Song-2.mp3"},
		{Name: "Noel Instrumental", URL: "https://www.soundhelix.com/examples/mp3/SoundHelix-Song-3.mp3"},
		{Name: "All I Want For Christmas Is You", URL: "https://www.soundhelix.com/examples/mp3/SoundHelix-Song-4.mp3"},
	}
}

// DefaultDocument returns a fresh copy of the seed document used when no
// state has been persisted yet or the persisted state is unreadable.
func DefaultDocument() AppDocument {
	return AppDocument{
		Person1: Person{
			Name:        "Anh",
			Avatar:      "https://picsum.photos/400/400?random=1",
			BirthDate:   valueobjects.MustCalendarDate("1998-01-01"),
			Description: "Chàng trai của em",
		},
		Person2: Person{
			Name:        "Em",
			Avatar:      "https://picsum.photos/400/400?random=2",
			BirthDate:   valueobjects.MustCalendarDate("2000-01-01"),
			Description: "Cô gái của anh",
		},
		StartDate: valueobjects.MustCalendarDate("2023-01-01"),
		Memories: []Memory{
			{
				ID:          seedID("1"),
				Date:        valueobjects.MustCalendarDate("2023-01-01"),
				Title:       "Ngày đầu tiên gặp gỡ",
				Description: "Chúng ta đã gặp nhau tại một quán cà phê nhỏ ven đường.",
				Link:        OptionalString("https://picsum.photos/800/600?random=10"),
			},
			{
				ID:          seedID("2"),
				Date:        valueobjects.MustCalendarDate("2023-02-14"),
				Title:       "Valentine đầu tiên",
				Description: "Món quà bất ngờ nhất mà anh dành cho em.",
				Link:        OptionalString("https://picsum.photos/800/600?random=11"),
			},
		},
		Theme: ThemeConfig{
			BackgroundURL:  "https://images.unsplash.com/photo-1518199266791-5375a83190b7?auto=format&fit=crop&q=80&w=1920",
			BackgroundType: BackgroundImage,
			AccentColor:    DefaultAccentColor,
		},
	}
}

func seedID(s string) valueobjects.MemoryID {
	id, _ := valueobjects.NewMemoryIDFromString(s)
	return id
}
