package params

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/zeusync/ghostsim/pkg/geom"
)

// Catalog maps vehicle and character names to their parameters.
type Catalog struct {
	Vehicles   map[string]VehicleConfig `yaml:"vehicles"`
	Characters map[string]CommonStats   `yaml:"characters"`
}

type VehicleConfig struct {
	Stats  VehicleStats  `yaml:"stats"`
	Common CommonStats   `yaml:"common"`
	Body   BodyConfig    `yaml:"body"`
	Handle *HandleConfig `yaml:"handle,omitempty"`
}

type BodyConfig struct {
	InitialPosY float32            `yaml:"initial_pos_y"`
	Hitboxes    []BodyHitboxConfig `yaml:"hitboxes"`
	Cuboids     [2]Vec3            `yaml:"cuboids"`
	RotFactor   float32            `yaml:"rot_factor"`
	Wheels      [2]WheelConfig     `yaml:"wheels"`
}

type BodyHitboxConfig struct {
	Pos       Vec3    `yaml:"pos"`
	Radius    float32 `yaml:"radius"`
	WallsOnly bool    `yaml:"walls_only"`
}

type WheelConfig struct {
	DistSuspension  float32 `yaml:"dist_suspension"`
	SpeedSuspension float32 `yaml:"speed_suspension"`
	SlackY          float32 `yaml:"slack_y"`
	TopmostPos      Vec3    `yaml:"topmost_pos"`
	WheelRadius     float32 `yaml:"wheel_radius"`
	HitboxRadius    float32 `yaml:"hitbox_radius"`
}

// HandleConfig takes its angles in degrees.
type HandleConfig struct {
	Pos    Vec3 `yaml:"pos"`
	Angles Vec3 `yaml:"angles"`
}

// Vec3 is written as a three element sequence.
type Vec3 [3]float32

func (v Vec3) Geom() geom.Vec3 {
	return geom.NewVec3(v[0], v[1], v[2])
}

// Assets is everything a player needs besides the track.
type Assets struct {
	Stats  Stats
	Body   Body
	Handle *Handle
}

// LoadCatalog decodes a YAML catalog.
func LoadCatalog(r io.Reader) (*Catalog, error) {
	var c Catalog
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return &c, nil
}

func (c *Catalog) Vehicle(name string) (VehicleConfig, error) {
	v, ok := c.Vehicles[name]
	if !ok {
		return VehicleConfig{}, fmt.Errorf("%w: vehicle %q", ErrMissingAsset, name)
	}
	return v, nil
}

func (c *Catalog) Character(name string) (CommonStats, error) {
	s, ok := c.Characters[name]
	if !ok {
		return CommonStats{}, fmt.Errorf("%w: character %q", ErrMissingAsset, name)
	}
	return s, nil
}

// Assemble merges the named vehicle and character into player assets.
func (c *Catalog) Assemble(vehicle, character string) (Assets, error) {
	v, err := c.Vehicle(vehicle)
	if err != nil {
		return Assets{}, err
	}
	ch, err := c.Character(character)
	if err != nil {
		return Assets{}, err
	}
	if err := v.Stats.Validate(); err != nil {
		return Assets{}, fmt.Errorf("vehicle %q: %w", vehicle, err)
	}

	body := v.Body.build()
	if err := body.Validate(); err != nil {
		return Assets{}, fmt.Errorf("vehicle %q: %w", vehicle, err)
	}

	assets := Assets{
		Stats: Merge(Stats{Vehicle: v.Stats, Common: v.Common}, ch),
		Body:  body,
	}
	if v.Stats.HasHandle {
		if v.Handle == nil {
			return Assets{}, fmt.Errorf("%w: handle of vehicle %q", ErrMissingAsset, vehicle)
		}
		assets.Handle = &Handle{
			Pos:    v.Handle.Pos.Geom(),
			Angles: v.Handle.Angles.Geom().ToRadians(),
		}
	}
	return assets, nil
}

func (b BodyConfig) build() Body {
	body := Body{
		InitialPosY: b.InitialPosY,
		Hitboxes:    make([]BodyHitbox, 0, len(b.Hitboxes)),
		Cuboids:     [2]geom.Vec3{b.Cuboids[0].Geom(), b.Cuboids[1].Geom()},
		RotFactor:   b.RotFactor,
	}
	for _, h := range b.Hitboxes {
		body.Hitboxes = append(body.Hitboxes, BodyHitbox{
			Pos:       h.Pos.Geom(),
			Radius:    h.Radius,
			WallsOnly: h.WallsOnly,
		})
	}
	for i, w := range b.Wheels {
		body.Wheels[i] = WheelSpec{
			DistSuspension:  w.DistSuspension,
			SpeedSuspension: w.SpeedSuspension,
			SlackY:          w.SlackY,
			TopmostPos:      w.TopmostPos.Geom(),
			WheelRadius:     w.WheelRadius,
			HitboxRadius:    w.HitboxRadius,
		}
	}
	return body
}
