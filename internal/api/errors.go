package api

import "fmt"

func errUnknownAlgo(name string) error {
	return fmt.Errorf("api: unknown algorithm %q", name)
}

func errUnknownPattern(name string) error {
	return fmt.Errorf("api: unknown pattern %q", name)
}

func errBadWaypoints() error {
	return fmt.Errorf("api: waypoints request needs at least two waypoints and a positive speed")
}
