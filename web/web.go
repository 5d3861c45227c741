// Package web embeds the browser map pages.
package web

import (
	_ "embed"
)

// MapPage renders an interactive map.
//
//go:embed static/map.html
var MapPage []byte

// ShortestRoutePage plots a driving route between two places.
//
//go:embed static/shortest-route.html
var ShortestRoutePage []byte
