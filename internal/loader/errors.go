package loader

import "errors"

var (
	// ErrTilesetLoadFailed marks a tileset whose image could not be loaded.
	// Fatal to the map load; no entities are committed.
	ErrTilesetLoadFailed = errors.New("loader: tileset load failed")

	// ErrMapAlreadyLoaded is returned when a load targets a map ID that is
	// still registered. Unload it first.
	ErrMapAlreadyLoaded = errors.New("loader: map already loaded")
)
