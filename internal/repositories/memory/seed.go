package memory

import "github.com/quickbasket/api/internal/domain"

// SeedStores returns the default partner store roster. Store "1" is the
// primary (no delivery surcharge), "2" sits at medium distance, "3" is far.
func SeedStores() []domain.Store {
	return []domain.Store{
		{ID: "1", Name: "QuickBasket Central", Distance: domain.DistancePrimary},
		{ID: "2", Name: "FreshMart Midtown", Distance: domain.DistanceMedium},
		{ID: "3", Name: "GreenGrocer Outskirts", Distance: domain.DistanceFar},
	}
}

// SeedProducts returns the default demo catalog with per-store offers.
func SeedProducts() []domain.Product {
	return []domain.Product{
		{
			ID: "p-salt", Name: "Tata Salt", Brand: "Tata", Category: "staples", Quantity: "1 kg",
			StoreOptions: []domain.StoreOption{
				{StoreID: "1", StoreName: "QuickBasket Central", Price: 24, Available: true},
				{StoreID: "2", StoreName: "FreshMart Midtown", Price: 25, Available: true},
				{StoreID: "3", StoreName: "GreenGrocer Outskirts", Price: 23, Available: true},
			},
		},
		{
			ID: "p-atta", Name: "Aashirvaad Atta", Brand: "Aashirvaad", Category: "staples", Quantity: "10 kg",
			StoreOptions: []domain.StoreOption{
				{StoreID: "1", StoreName: "QuickBasket Central", Price: 455, Available: true},
				{StoreID: "2", StoreName: "FreshMart Midtown", Price: 449, Available: true},
			},
		},
		{
			ID: "p-milk", Name: "Amul Taaza Milk", Brand: "Amul", Category: "dairy", Quantity: "1 L",
			StoreOptions: []domain.StoreOption{
				{StoreID: "1", StoreName: "QuickBasket Central", Price: 58, Available: true},
				{StoreID: "3", StoreName: "GreenGrocer Outskirts", Price: 56, Available: false},
			},
		},
		{
			ID: "p-chips", Name: "Lays Classic Chips", Brand: "Lays", Category: "snacks", Quantity: "90 g",
			StoreOptions: []domain.StoreOption{
				{StoreID: "1", StoreName: "QuickBasket Central", Price: 30, Available: true},
				{StoreID: "2", StoreName: "FreshMart Midtown", Price: 28, Available: true},
				{StoreID: "3", StoreName: "GreenGrocer Outskirts", Price: 30, Available: true},
			},
		},
		{
			ID: "p-curd", Name: "Nestle Curd", Brand: "Nestle", Category: "dairy", Quantity: "400 g",
			StoreOptions: []domain.StoreOption{
				{StoreID: "2", StoreName: "FreshMart Midtown", Price: 45, Available: true},
			},
		},
	}
}
