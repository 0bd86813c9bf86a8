package marketplace

import "strings"

// Sample datasets served when the external price source is unreachable.
// Deterministic by query category so comparisons degrade gracefully instead
// of erroring out.
var sampleSets = map[string][]Listing{
	"dairy": {
		{ID: "amazon", Name: "Amazon Fresh", Price: 62, Link: "https://amazon.in", Delivery: "2 hrs"},
		{ID: "bigbasket", Name: "BigBasket", Price: 58, Link: "https://bigbasket.com", Delivery: "90 min"},
		{ID: "blinkit", Name: "Blinkit", Price: 65, Link: "https://blinkit.com", Delivery: "10 min"},
		{ID: "jiomart", Name: "JioMart", Price: 60, Link: "https://jiomart.com", Delivery: "next day"},
	},
	"staples": {
		{ID: "amazon", Name: "Amazon Fresh", Price: 455, Link: "https://amazon.in", Delivery: "2 hrs"},
		{ID: "bigbasket", Name: "BigBasket", Price: 440, Link: "https://bigbasket.com", Delivery: "90 min"},
		{ID: "jiomart", Name: "JioMart", Price: 432, Link: "https://jiomart.com", Delivery: "next day"},
		{ID: "zepto", Name: "Zepto", Price: 470, Link: "https://zepto.com", Delivery: "10 min"},
	},
	"snacks": {
		{ID: "amazon", Name: "Amazon Fresh", Price: 95, Link: "https://amazon.in", Delivery: "2 hrs"},
		{ID: "blinkit", Name: "Blinkit", Price: 99, Link: "https://blinkit.com", Delivery: "10 min"},
		{ID: "jiomart", Name: "JioMart", Price: 90, Link: "https://jiomart.com", Delivery: "next day"},
	},
	"default": {
		{ID: "amazon", Name: "Amazon Fresh", Price: 120, Link: "https://amazon.in", Delivery: "2 hrs"},
		{ID: "bigbasket", Name: "BigBasket", Price: 112, Link: "https://bigbasket.com", Delivery: "90 min"},
		{ID: "blinkit", Name: "Blinkit", Price: 125, Link: "https://blinkit.com", Delivery: "10 min"},
		{ID: "jiomart", Name: "JioMart", Price: 110, Link: "https://jiomart.com", Delivery: "next day"},
		{ID: "zepto", Name: "Zepto", Price: 130, Link: "https://zepto.com", Delivery: "10 min"},
	},
}

var categoryKeywords = []struct {
	category string
	keywords []string
}{
	{category: "dairy", keywords: []string{"milk", "curd", "paneer", "butter", "ghee", "cheese"}},
	{category: "staples", keywords: []string{"atta", "rice", "dal", "salt", "sugar", "oil", "flour"}},
	{category: "snacks", keywords: []string{"chips", "biscuit", "namkeen", "chocolate", "cookies"}},
}

// SampleListings returns the deterministic fallback dataset for a query.
func SampleListings(query string) []Listing {
	lowered := strings.ToLower(query)
	category := "default"
	for _, entry := range categoryKeywords {
		for _, keyword := range entry.keywords {
			if strings.Contains(lowered, keyword) {
				category = entry.category
				break
			}
		}
		if category != "default" {
			break
		}
	}

	src := sampleSets[category]
	listings := make([]Listing, len(src))
	copy(listings, src)
	return listings
}
