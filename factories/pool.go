package factories

import (
	"context"
	"fmt"
	"sync"

	"github.com/yeremiapane/smartserve/services"
)

var firstNames = []string{
	"Amelia", "Oliver", "Isla", "George", "Ava", "Noah", "Mia", "Arthur", "Grace", "Leo",
	"Freya", "Oscar", "Lily", "Harry", "Ivy", "Jack", "Rosie", "Charlie", "Florence", "Henry",
	"Willow", "Theo", "Evie", "Alfie", "Poppy", "Thomas", "Sienna", "Joshua", "Daisy", "Finley",
}

var lastNames = []string{
	"Smith", "Jones", "Taylor", "Brown", "Williams", "Wilson", "Johnson", "Davies", "Robinson", "Wright",
	"Thompson", "Evans", "Walker", "White", "Roberts", "Green", "Hall", "Wood", "Jackson", "Clarke",
	"Patel", "Khan", "Lewis", "James", "Phillips", "Mason", "Mitchell", "Rose", "Davis", "Rodriguez",
}

var restaurantNames = []string{
	"The Golden Fork", "Harbour Kitchen", "Olive and Thyme", "The Crooked Spoon", "Saffron House",
	"Copper Pot", "The Ivy Room", "Blue Lantern", "Wild Garlic", "The Salt Cellar",
	"Maple Table", "Juniper Grill", "The Hungry Heron", "Fig and Vine", "Rosemary Lane",
}

var menuItemNames = []string{
	"Tomato Soup", "Garlic Bread", "Caesar Salad", "Fish and Chips", "Beef Wellington",
	"Mushroom Risotto", "Chicken Curry", "Lamb Shank", "Sticky Toffee Pudding", "Lemon Tart",
	"Eton Mess", "Prawn Cocktail", "Shepherd's Pie", "Bread and Butter Pudding", "Welsh Rarebit",
	"Scotch Egg", "Cottage Pie", "Apple Crumble", "Ploughman's Lunch", "Treacle Tart",
}

var menuItemDescriptions = []string{
	"Served with crusty bread.", "Baked until golden.", "With a soft boiled egg.",
	"Slow cooked for six hours.", "Finished with fresh herbs.", "A house favourite.",
	"Made with local produce.", "Served warm with cream.", "Seasonal and light.",
	"Comes with a side of greens.",
}

// DefaultPool is used when no JSON pool is configured.
func DefaultPool() Pool {
	faces := make([]string, 50)
	for i := range faces {
		faces[i] = fmt.Sprintf("https://faces.example.test/%03d.png", i+1)
	}
	return Pool{
		"user":       {"first_name": firstNames, "last_name": lastNames},
		"restaurant": {"name": restaurantNames},
		"menu_item":  {"name": menuItemNames, "description": menuItemDescriptions},
		"face":       {"image_url": faces},
	}
}

var _ services.ImageFetcher = (*StubImageFetcher)(nil)

// StubImageFetcher serves images without touching the network. Each URL
// maps to its own bytes unless Images overrides it; URLs in Fail return an
// error.
type StubImageFetcher struct {
	mu     sync.Mutex
	Images map[string][]byte
	Fail   map[string]bool
	Calls  []string
}

func (s *StubImageFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls = append(s.Calls, url)
	if s.Fail[url] {
		return nil, fmt.Errorf("fetch %s: %w", url, services.ErrImageFetch)
	}
	if body, ok := s.Images[url]; ok {
		return body, nil
	}
	return []byte("image:" + url), nil
}
