package route

import "github.com/Temutjin2k/sitetrack/internal/domain/models"

func wp(lat, lng float64, name string) models.Waypoint {
	return models.Waypoint{Coordinate: models.Coordinate{Latitude: lat, Longitude: lng}, Name: name}
}

func dest(lat, lng float64, name, category string) models.Destination {
	return models.Destination{Coordinate: models.Coordinate{Latitude: lat, Longitude: lng}, Name: name, Category: category}
}

func zone(lat, lng, radius float64, desc string) models.DangerZone {
	return models.DangerZone{Coordinate: models.Coordinate{Latitude: lat, Longitude: lng}, Radius: radius, Description: desc}
}

// DemoRoutes returns the built-in routes of the Versailles site.
func DemoRoutes() []models.Route {
	return []models.Route{
		{
			ID:          "route-chateau",
			Name:        "Château de Versailles",
			Description: "Entrée principale du château",
			Waypoints: []models.Waypoint{
				wp(48.8049, 2.1201, "Place d'Armes"),
				wp(48.8052, 2.1203, "Avenue de Paris"),
			},
			Destination:  dest(48.8049, 2.1201, "Château de Versailles", "monument"),
			DangerZones:  []models.DangerZone{zone(48.8052, 2.1203, 150, "Zone piétonne - Place d'Armes")},
			SpeedLimit:   30,
			VehicleTypes: []string{"car", "van"},
		},
		{
			ID:   "route-grand-trianon",
			Name: "Grand Trianon",
			Waypoints: []models.Waypoint{
				wp(48.8049, 2.1201, "Château"),
				wp(48.8080, 2.1150, "Parc de Versailles"),
				wp(48.8100, 2.1120, "Allée du Grand Trianon"),
			},
			Destination:  dest(48.8120, 2.1100, "Grand Trianon", "monument"),
			DangerZones:  []models.DangerZone{zone(48.8090, 2.1135, 50, "Zone piétonne - Parc")},
			SpeedLimit:   20,
			VehicleTypes: []string{"car", "van"},
		},
		{
			ID:   "route-petit-trianon",
			Name: "Petit Trianon",
			Waypoints: []models.Waypoint{
				wp(48.8049, 2.1201, "Château"),
				wp(48.8080, 2.1150, "Parc de Versailles"),
				wp(48.8120, 2.1100, "Grand Trianon"),
				wp(48.8135, 2.1090, "Allée du Petit Trianon"),
			},
			Destination:  dest(48.8150, 2.1080, "Petit Trianon", "monument"),
			DangerZones:  []models.DangerZone{zone(48.8140, 2.1085, 50, "Zone piétonne - Parc")},
			SpeedLimit:   20,
			VehicleTypes: []string{"car", "van"},
		},
		{
			ID:   "route-hameau-reine",
			Name: "Hameau de la Reine",
			Waypoints: []models.Waypoint{
				wp(48.8049, 2.1201, "Château"),
				wp(48.8150, 2.1080, "Petit Trianon"),
			},
			Destination:  dest(48.8160, 2.1070, "Hameau de la Reine", "monument"),
			DangerZones:  []models.DangerZone{zone(48.8155, 2.1075, 100, "Zone piétonne - Hameau")},
			SpeedLimit:   20,
			VehicleTypes: []string{"car", "van"},
		},
		{
			ID:   "route-orangerie",
			Name: "Orangerie de Versailles",
			Waypoints: []models.Waypoint{
				wp(48.8049, 2.1201, "Place d'Armes"),
				wp(48.8035, 2.1180, "Avenue de Sceaux"),
			},
			Destination:  dest(48.8020, 2.1160, "Orangerie de Versailles", "monument"),
			SpeedLimit:   30,
			VehicleTypes: []string{"car", "van"},
		},
		{
			ID:   "route-gare-chantiers",
			Name: "Gare de Versailles-Chantiers",
			Waypoints: []models.Waypoint{
				wp(48.8049, 2.1201, "Centre-ville"),
				wp(48.8035, 2.1300, "Avenue de Sceaux"),
				wp(48.8020, 2.1350, "Place de la Gare"),
			},
			Destination:  dest(48.8010, 2.1370, "Gare de Versailles-Chantiers", "station"),
			SpeedLimit:   50,
			VehicleTypes: []string{"car", "van", "truck"},
		},
		{
			ID:   "route-gare-rive-droite",
			Name: "Gare de Versailles-Rive Droite",
			Waypoints: []models.Waypoint{
				wp(48.8049, 2.1201, "Centre-ville"),
				wp(48.8065, 2.1230, "Avenue de l'Europe"),
			},
			Destination:  dest(48.8080, 2.1250, "Gare de Versailles-Rive Droite", "station"),
			SpeedLimit:   50,
			VehicleTypes: []string{"car", "van"},
		},
		{
			ID:   "route-hotel-ville",
			Name: "Hôtel de Ville de Versailles",
			Waypoints: []models.Waypoint{
				wp(48.8049, 2.1201, "Place d'Armes"),
				wp(48.8055, 2.1180, "Rue de la Paroisse"),
			},
			Destination:  dest(48.8065, 2.1150, "Hôtel de Ville", "public"),
			SpeedLimit:   30,
			VehicleTypes: []string{"car", "van"},
		},
		{
			ID:   "route-lycee-hoche",
			Name: "Lycée Hoche",
			Waypoints: []models.Waypoint{
				wp(48.8049, 2.1201, "Centre-ville"),
				wp(48.8060, 2.1220, "Avenue de l'Europe"),
			},
			Destination:  dest(48.8075, 2.1240, "Lycée Hoche", "school"),
			DangerZones:  []models.DangerZone{zone(48.8075, 2.1240, 50, "Zone scolaire")},
			SpeedLimit:   30,
			VehicleTypes: []string{"car", "van"},
		},
		{
			ID:   "route-hopital-andre-mignot",
			Name: "Hôpital André Mignot",
			Waypoints: []models.Waypoint{
				wp(48.8049, 2.1201, "Centre-ville"),
				wp(48.8030, 2.1250, "Avenue de Paris"),
			},
			Destination:  dest(48.8015, 2.1280, "Hôpital André Mignot", "hospital"),
			SpeedLimit:   50,
			VehicleTypes: []string{"car", "van", "ambulance"},
		},
	}
}
