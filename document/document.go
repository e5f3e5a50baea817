// Package document models wallpaper scene documents (scene.json) and the
// model files their objects reference.
//
// The schema is loosely typed: most object fields are optional and several
// fields have more than one wire encoding. Spatial fields use [Vectors]
// (a scalar or a whitespace-separated component string) and visibility uses
// [Visibility] (a bare boolean or a wrapped {"value": bool} object).
// Decoding keeps those encodings intact; interpreting them is left to the
// renderer.
package document

// Root is a scene document.
type Root struct {
	Camera  Camera   `json:"camera"`
	General General  `json:"general"`
	Objects []Object `json:"objects"`
	Version int64    `json:"version"`
}

// Camera is the scene camera.
type Camera struct {
	Center Vectors `json:"center"`
	Eye    Vectors `json:"eye"`
	Up     Vectors `json:"up"`
}

// General holds scene-wide render settings.
type General struct {
	AmbientColor Vectors `json:"ambientcolor"`

	Bloom              bool    `json:"bloom"`
	BloomHDRFeather    float64 `json:"bloomhdrfeather"`
	BloomHDRIterations int64   `json:"bloomhdriterations"`
	BloomHDRScatter    float64 `json:"bloomhdrscatter"`
	BloomHDRStrength   float64 `json:"bloomhdrstrength"`
	BloomHDRThreshold  float64 `json:"bloomhdrthreshold"`
	BloomStrength      float64 `json:"bloomstrength"`
	BloomThreshold     float64 `json:"bloomthreshold"`
	BloomTint          Vectors `json:"bloomtint"`

	CameraFade                   bool        `json:"camerafade"`
	CameraParallax               bool        `json:"cameraparallax"`
	CameraParallaxAmount         float64     `json:"cameraparallaxamount"`
	CameraParallaxDelay          float64     `json:"cameraparallaxdelay"`
	CameraParallaxMouseInfluence float64     `json:"cameraparallaxmouseinfluence"`
	CameraPreview                bool        `json:"camerapreview"`
	CameraShake                  CameraShake `json:"camerashake"`
	CameraShakeAmplitude         float64     `json:"camerashakeamplitude"`
	CameraShakeRoughness         float64     `json:"camerashakeroughness"`
	CameraShakeSpeed             float64     `json:"camerashakespeed"`

	ClearColor   Vectors `json:"clearcolor"`
	ClearEnabled bool    `json:"clearenabled"`

	FarZ                   float64              `json:"farz"`
	FOV                    float64              `json:"fov"`
	GravityDirection       Vectors              `json:"gravitydirection"`
	GravityStrength        float64              `json:"gravitystrength"`
	HDR                    bool                 `json:"hdr"`
	NearZ                  float64              `json:"nearz"`
	OrthogonalProjection   OrthogonalProjection `json:"orthogonalprojection"`
	PerspectiveOverrideFOV float64              `json:"perspectiveoverridefov"`
	SkylightColor          Vectors              `json:"skylightcolor"`
	WindDirection          Vectors              `json:"winddirection"`
	WindEnabled            bool                 `json:"windenabled"`
	WindStrength           float64              `json:"windstrength"`
	Zoom                   float64              `json:"zoom"`
}

// CameraShake is a user-bindable boolean.
type CameraShake struct {
	User  string `json:"user"`
	Value bool   `json:"value"`
}

// OrthogonalProjection is the scene's design resolution.
type OrthogonalProjection struct {
	Height int64 `json:"height"`
	Width  int64 `json:"width"`
}

// Object is one node of the scene.
type Object struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`

	Origin *Vectors `json:"origin,omitempty"`
	Angles *Vectors `json:"angles,omitempty"`
	Scale  *Vectors `json:"scale,omitempty"`
	Size   *Vectors `json:"size,omitempty"`

	Alpha   *float64   `json:"alpha,omitempty"`
	Image   *string    `json:"image,omitempty"`
	Visible Visibility `json:"visible"`

	Effects          []Effect          `json:"effects,omitempty"`
	AnimationLayers  []AnimationLayer  `json:"animationlayers,omitempty"`
	InstanceOverride *InstanceOverride `json:"instanceoverride,omitempty"`
	Sound            []string          `json:"sound,omitempty"`

	CastShadow         *bool    `json:"castshadow,omitempty"`
	ClampUVs           *bool    `json:"clampuvs,omitempty"`
	DisablePropagation bool     `json:"disablepropagation"`
	LockTransforms     *bool    `json:"locktransforms,omitempty"`
	Particle           *string  `json:"particle,omitempty"`
	Solid              *bool    `json:"solid,omitempty"`
	Attachment         *string  `json:"attachment,omitempty"`
	Parent             *int64   `json:"parent,omitempty"`
	MaxTime            *float64 `json:"maxtime,omitempty"`
	MinTime            *float64 `json:"mintime,omitempty"`
	MuteInEditor       *bool    `json:"muteineditor,omitempty"`
	PlaybackMode       *string  `json:"playbackmode,omitempty"`
	StartSilent        *bool    `json:"startsilent,omitempty"`
	Volume             *float64 `json:"volume,omitempty"`
}

// IsSound reports whether the object is a sound emitter rather than a sprite.
func (o *Object) IsSound() bool { return len(o.Sound) > 0 }

// Effect is a shader effect attached to an object.
type Effect struct {
	File    string     `json:"file"`
	ID      int64      `json:"id"`
	Name    string     `json:"name"`
	Passes  []Pass     `json:"passes"`
	Visible Visibility `json:"visible"`
}

// Pass is one render pass of an effect.
type Pass struct {
	ConstantShaderValues *ConstantShaderValues `json:"constantshadervalues,omitempty"`
	ID                   int64                 `json:"id"`
	Combos               *Combos               `json:"combos,omitempty"`
	Textures             []*string             `json:"textures,omitempty"`
}

// ConstantShaderValues are the material constants overridden by a pass.
//
// Some keys differ only by case ("Opacity" vs "opacity"); encoding/json
// prefers exact matches so both spellings land in their own field.
type ConstantShaderValues struct {
	Direction      *float64 `json:"direction,omitempty"`
	Exponent       *float64 `json:"exponent,omitempty"`
	Scale          *float64 `json:"scale,omitempty"`
	Speed          *float64 `json:"speed,omitempty"`
	Strength       *float64 `json:"strength,omitempty"`
	Bounds         *string  `json:"bounds,omitempty"`
	Friction       *string  `json:"friction,omitempty"`
	Alpha          *float64 `json:"alpha,omitempty"`
	Repeat         *string  `json:"repeat,omitempty"`
	SpeedX         *float64 `json:"speedx,omitempty"`
	SpeedY         *float64 `json:"speedy,omitempty"`
	Color          *string  `json:"color,omitempty"`
	AnimationSpeed *float64 `json:"animationspeed,omitempty"`
	Ratio          *float64 `json:"ratio,omitempty"`
	RippleStrength *float64 `json:"ripplestrength,omitempty"`
	ScrollDir      *float64 `json:"scrolldirection,omitempty"`
	ScrollSpeed    *float64 `json:"scrollspeed,omitempty"`
	Point0         *string  `json:"point0,omitempty"`
	Point1         *string  `json:"point1,omitempty"`
	Point2         *string  `json:"point2,omitempty"`
	Point3         *string  `json:"point3,omitempty"`

	Aperture   *float64   `json:"Aperture,omitempty"`
	Opacity    *UserValue `json:"Opacity,omitempty"`
	Gamma      *float64   `json:"Gamma,omitempty"`
	Highlights *float64   `json:"Highlights,omitempty"`
	Tint       *string    `json:"Tint,omitempty"`
	OpacityLow *float64   `json:"opacity,omitempty"`
	Radius     *float64   `json:"radius,omitempty"`
	GammaLow   *float64   `json:"gamma,omitempty"`
	Threshold  *float64   `json:"threshold,omitempty"`
}

// UserValue is a numeric constant that may be bound to a user property.
type UserValue struct {
	User  string  `json:"user"`
	Value float64 `json:"value"`
}

// Combos are shader permutation switches.
type Combos struct {
	Vertical  *int64 `json:"VERTICAL,omitempty"`
	Precise   *int64 `json:"PRECISE,omitempty"`
	BlendMode *int64 `json:"BLENDMODE,omitempty"`
}

// InstanceOverride tunes a particle system instance.
type InstanceOverride struct {
	Count    float64  `json:"count"`
	ID       int64    `json:"id"`
	Lifetime *float64 `json:"lifetime,omitempty"`
	Rate     *float64 `json:"rate,omitempty"`
	Size     *float64 `json:"size,omitempty"`
	Speed    float64  `json:"speed"`
	Alpha    *float64 `json:"alpha,omitempty"`
}

// AnimationLayer is a puppet animation layer.
type AnimationLayer struct {
	Additive  bool    `json:"additive"`
	Animation int64   `json:"animation"`
	Blend     float64 `json:"blend"`
	BlendIn   bool    `json:"blendin"`
	BlendOut  bool    `json:"blendout"`
	BlendTime float64 `json:"blendtime"`
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	Rate      float64 `json:"rate"`
	Visible   bool    `json:"visible"`
}

// Model is the model file an object's image field points at.
type Model struct {
	AutoSize   bool    `json:"autosize"`
	CropOffset *string `json:"cropoffset,omitempty"`
	Material   string  `json:"material"`
	Puppet     *string `json:"puppet,omitempty"`
}
