package factors

import "carbonledger/pkg/domain"

// CatalogueVersion identifies the bundled factor data vintage. It is
// stamped on every ledger record computed from a catalogue factor so stored
// figures remain traceable after the catalogue is updated.
const CatalogueVersion = "2024.1"

const overrideVersion = "custom"

// Scope 1 stationary combustion factors, tCO2/tCH4/tN2O per unit.
var scope1Stationary = []Factor{
	{ActivityType: "natural_gas", Name: "Natural gas", Unit: "m3", Kind: KindMultiGas, CO2: 0.00202, CH4: 0.000001, N2O: 0.0000001, Source: "IPCC 2006"},
	{ActivityType: "diesel", Name: "Diesel", Unit: "litre", Kind: KindMultiGas, CO2: 0.00268, CH4: 0.000003, N2O: 0.0000002, Source: "GHG Protocol"},
	{ActivityType: "fuel_oil", Name: "Fuel oil", Unit: "litre", Kind: KindMultiGas, CO2: 0.00317, CH4: 0.000003, N2O: 0.0000002, Source: "GHG Protocol"},
	{ActivityType: "lpg", Name: "LPG", Unit: "kg", Kind: KindMultiGas, CO2: 0.00303, CH4: 0.000001, N2O: 0.0000001, Source: "GHG Protocol"},
	{ActivityType: "coal", Name: "Coal", Unit: "ton", Kind: KindMultiGas, CO2: 2.42, CH4: 0.003, N2O: 0.0015, Source: "IPCC 2006"},
}

// Scope 1 mobile combustion factors.
var scope1Mobile = []Factor{
	{ActivityType: "gasoline", Name: "Gasoline", Unit: "litre", Kind: KindMultiGas, CO2: 0.00231, CH4: 0.000010, N2O: 0.0000005, Source: "GHG Protocol"},
	{ActivityType: "diesel_vehicle", Name: "Diesel (vehicle)", Unit: "litre", Kind: KindMultiGas, CO2: 0.00268, CH4: 0.000003, N2O: 0.0000005, Source: "GHG Protocol"},
}

// Scope 1 fugitive refrigerants, direct GWP per kg leaked.
var scope1Fugitive = []Factor{
	{ActivityType: "r134a", Name: "R-134a (HFC)", Unit: "kg", Kind: KindGWP, GWP: 1430, Source: "IPCC AR5"},
	{ActivityType: "r404a", Name: "R-404A (HFC)", Unit: "kg", Kind: KindGWP, GWP: 3922, Source: "IPCC AR5"},
	{ActivityType: "r410a", Name: "R-410A (HFC)", Unit: "kg", Kind: KindGWP, GWP: 2088, Source: "IPCC AR5"},
}

// Scope 2 grid electricity factors, tCO2e/kWh.
var scope2Electricity = []Factor{
	{ActivityType: "turkey", Name: "Turkey grid", Unit: "kWh", Kind: KindSingle, CO2e: 0.000475, Source: "TEIAS 2023"},
	{ActivityType: "eu_average", Name: "EU average grid", Unit: "kWh", Kind: KindSingle, CO2e: 0.000295, Source: "IEA 2023"},
	{ActivityType: "usa_average", Name: "USA average grid", Unit: "kWh", Kind: KindSingle, CO2e: 0.000417, Source: "EPA 2023"},
	{ActivityType: "renewable", Name: "Renewable supply", Unit: "kWh", Kind: KindSingle, CO2e: 0.00001, Source: "GHG Protocol"},
}

// Scope 2 purchased heating and steam factors.
var scope2Heating = []Factor{
	{ActivityType: "district_heating", Name: "District heating", Unit: "MWh", Kind: KindSingle, CO2e: 0.215, Source: "GHG Protocol"},
	{ActivityType: "steam", Name: "Steam", Unit: "ton", Kind: KindSingle, CO2e: 0.078, Source: "GHG Protocol"},
}

// Scope-3 category specifications. Categories with named sub-factors
// require the caller to pick one; DefaultFactor serves the rest.
var scope3Specs = []Scope3Spec{
	{
		Category: domain.CategoryPurchasedGoods, Name: "Purchased goods and services",
		Method: domain.Scope3SpendBased, Unit: "kUSD", DefaultFactor: 0.45, Source: "EPA EEIO",
	},
	{
		Category: domain.CategoryCapitalGoods, Name: "Capital goods",
		Method: domain.Scope3SpendBased, Unit: "kUSD", DefaultFactor: 0.38, Source: "EPA EEIO",
	},
	{
		Category: domain.CategoryFuelEnergy, Name: "Fuel and energy related activities",
		Method: domain.Scope3AverageData, Unit: "kWh", DefaultFactor: 0.12, Source: "GHG Protocol",
	},
	{
		Category: domain.CategoryUpstreamTransport, Name: "Upstream transportation and distribution",
		Method: domain.Scope3DistanceBased, Unit: "ton-km", DefaultFactor: 0.062, Source: "GLEC Framework",
	},
	{
		Category: domain.CategoryWaste, Name: "Waste generated in operations",
		Method: domain.Scope3WasteType, Unit: "ton", Source: "EPA WARM",
		SubFactors: map[string]float64{
			"landfill":     0.57,
			"incineration": 0.03,
			"recycling":    0.01,
			"composting":   0.02,
		},
	},
	{
		Category: domain.CategoryBusinessTravel, Name: "Business travel",
		Method: domain.Scope3DistanceBased, Unit: "km", Source: "DEFRA 2023",
		SubFactors: map[string]float64{
			"flight_short":  0.000258, // <500 km
			"flight_medium": 0.000187, // 500-3700 km
			"flight_long":   0.000152, // >3700 km
			"car":           0.000192,
			"train":         0.000041,
		},
		SpendFactor: 0.000200,
		SpendUnit:   "USD",
	},
	{
		Category: domain.CategoryEmployeeCommuting, Name: "Employee commuting",
		Method: domain.Scope3DistanceBased, Unit: "km", Source: "DEFRA 2023",
		SubFactors: map[string]float64{
			"car_gasoline":    0.000192,
			"car_diesel":      0.000171,
			"bus":             0.000089,
			"metro":           0.000041,
			"walking_cycling": 0.0,
		},
	},
	{
		Category: domain.CategoryDownstreamTransport, Name: "Downstream transportation and distribution",
		Method: domain.Scope3DistanceBased, Unit: "ton-km", DefaultFactor: 0.062, Source: "GLEC Framework",
	},
	{
		// Product-specific categories carry no usable catalogue default;
		// companies supply their own factor via overrides.
		Category: domain.CategoryUseOfSoldProducts, Name: "Use of sold products",
		Method: domain.Scope3ProductSpecific, Unit: "unit", DefaultFactor: 0.0, Source: "GHG Protocol",
	},
	{
		Category: domain.CategoryEndOfLife, Name: "End-of-life treatment of sold products",
		Method: domain.Scope3WasteType, Unit: "ton", DefaultFactor: 0.35, Source: "EPA WARM",
	},
}

func catalogueEntries() []Factor {
	grouped := map[domain.Category][]Factor{
		domain.CategoryStationary:  scope1Stationary,
		domain.CategoryMobile:      scope1Mobile,
		domain.CategoryFugitive:    scope1Fugitive,
		domain.CategoryElectricity: scope2Electricity,
		domain.CategoryHeating:     scope2Heating,
	}

	var all []Factor
	for category, entries := range grouped {
		for _, f := range entries {
			f.Scope = category.Scope()
			f.Category = category
			f.ID = f.Scope.String() + "/" + category.String() + "/" + f.ActivityType
			f.Version = CatalogueVersion
			all = append(all, f)
		}
	}
	return all
}
