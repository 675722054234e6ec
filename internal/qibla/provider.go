package qibla

import (
	"context"
	"errors"
	"fmt"
)

// ErrHeadingUnavailable means the platform has no compass reading.
var ErrHeadingUnavailable = errors.New("heading unavailable")

// LocationProvider supplies the observer position. Permission prompts,
// timeouts and retries live behind this interface.
type LocationProvider interface {
	CurrentLocation(ctx context.Context) (Coordinate, error)
}

// HeadingProvider supplies the device heading in degrees clockwise from north.
type HeadingProvider interface {
	CurrentHeading(ctx context.Context) (float64, error)
}

// Reading is one qibla observation for an observer.
type Reading struct {
	Observer   Coordinate `json:"observer"`
	Target     Coordinate `json:"target"`
	Bearing    float64    `json:"bearing"`
	Compass    string     `json:"compass"`
	DistanceKm float64    `json:"distanceKm"`
	// Heading and Rotation are nil when no heading was available.
	Heading  *float64 `json:"heading,omitempty"`
	Rotation *float64 `json:"rotation,omitempty"`
}

// Locate acquires the observer's position and, if possible, the device
// heading, then computes the bearing toward target. A nil heading provider or
// ErrHeadingUnavailable produces a reading without rotation.
func Locate(ctx context.Context, location LocationProvider, heading HeadingProvider, target Coordinate) (Reading, error) {
	observer, err := location.CurrentLocation(ctx)
	if err != nil {
		return Reading{}, fmt.Errorf("acquire location: %w", err)
	}
	if err := observer.Validate(); err != nil {
		return Reading{}, err
	}

	bearing := Bearing(observer, target)
	reading := Reading{
		Observer:   observer,
		Target:     target,
		Bearing:    bearing,
		Compass:    Compass(bearing),
		DistanceKm: DistanceKm(observer, target),
	}

	if heading == nil {
		return reading, nil
	}
	h, err := heading.CurrentHeading(ctx)
	if errors.Is(err, ErrHeadingUnavailable) {
		return reading, nil
	}
	if err != nil {
		return Reading{}, fmt.Errorf("acquire heading: %w", err)
	}
	rotation := RelativeRotation(bearing, h)
	reading.Heading = &h
	reading.Rotation = &rotation
	return reading, nil
}

// FixedLocation is a LocationProvider for a coordinate that is already known,
// such as one sent by a client.
type FixedLocation Coordinate

// CurrentLocation implements LocationProvider.
func (f FixedLocation) CurrentLocation(context.Context) (Coordinate, error) {
	return Coordinate(f), nil
}

// FixedHeading is a HeadingProvider backed by an optional value.
type FixedHeading struct {
	Value *float64
}

// CurrentHeading implements HeadingProvider.
func (f FixedHeading) CurrentHeading(context.Context) (float64, error) {
	if f.Value == nil {
		return 0, ErrHeadingUnavailable
	}
	return *f.Value, nil
}
