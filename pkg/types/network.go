package types

import (
	"cmp"
	"slices"
)

// AccessPoint is a single network reported by a device scan.
type AccessPoint struct {
	SSID    string `json:"ssid" yaml:"ssid"`
	Channel int    `json:"ch" yaml:"ch"`
	// RSSI is in dBm, values closer to 0 are stronger
	RSSI int `json:"rssi" yaml:"rssi"`
}

// NetworkList is a scan result in the order the device reported it.
type NetworkList []AccessPoint

// PlaceholderNetworks is the list shown before the first scan completes so
// readers never observe an empty view of a device that has not answered yet.
func PlaceholderNetworks() NetworkList {
	return NetworkList{
		{SSID: "Fake-WIFI-1", Channel: 1, RSSI: -64},
		{SSID: "Fake-Wifi-2", Channel: 1, RSSI: -89},
	}
}

// RankBySignal orders the networks strongest first. It sorts a copy ascending
// by RSSI and then reverses the whole copy, so networks with the same RSSI
// come out in the opposite order from how the device reported them. The
// passed list is never modified.
func RankBySignal(list NetworkList) []AccessPoint {
	ranked := make([]AccessPoint, len(list))
	copy(ranked, list)
	slices.SortStableFunc(ranked, func(a, b AccessPoint) int {
		return cmp.Compare(a.RSSI, b.RSSI)
	})
	slices.Reverse(ranked)
	return ranked
}
