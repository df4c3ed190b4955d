package reference

// Axes is the instantaneous key-down state the collaborator (keyboard
// capture, explicitly out of core scope) hands to the core each tick.
type Axes struct {
	Left, Right bool // -x / +x
	Up, Down    bool // +z / -z (forward/back in the horizontal plane)
	Ascend      bool // +y
	Descend     bool // -y
	YawLeft     bool
	YawRight    bool
}

const (
	keyboardLateralSpeed = 3.0 // m/s
	keyboardVerticalSpeed = 3.0 // m/s
	keyboardYawRate       = 1.5 // rad/s
)

// KeyboardChannel integrates an axis-command stream into a target
// position and yaw. It is the one reference source whose state is
// driven by an external, unpredictable input rather than by time
// alone.
type KeyboardChannel struct {
	x, y, z, yaw float64
	axes         Axes
}

// NewKeyboardChannel starts the integrated target at the given pose.
func NewKeyboardChannel(x, y, z, yaw float64) *KeyboardChannel {
	return &KeyboardChannel{x: x, y: y, z: z, yaw: yaw}
}

// SetAxes updates the current key-down state; it takes effect on the
// next Advance call.
func (k *KeyboardChannel) SetAxes(a Axes) { k.axes = a }

// Reset re-centers the channel at the given pose.
func (k *KeyboardChannel) Reset(x, y, z, yaw float64) {
	k.x, k.y, k.z, k.yaw = x, y, z, yaw
}

func (k *KeyboardChannel) commandVelocity() (vx, vy, vz, vyaw float64) {
	if k.axes.Right {
		vx += keyboardLateralSpeed
	}
	if k.axes.Left {
		vx -= keyboardLateralSpeed
	}
	if k.axes.Up {
		vz += keyboardLateralSpeed
	}
	if k.axes.Down {
		vz -= keyboardLateralSpeed
	}
	if k.axes.Ascend {
		vy += keyboardVerticalSpeed
	}
	if k.axes.Descend {
		vy -= keyboardVerticalSpeed
	}
	if k.axes.YawRight {
		vyaw += keyboardYawRate
	}
	if k.axes.YawLeft {
		vyaw -= keyboardYawRate
	}
	return
}

// Advance integrates one fixed tick of dt seconds and returns the
// integrated setpoint with the instantaneous commanded velocity as
// feed-forward.
func (k *KeyboardChannel) Advance(dt float64) Setpoint {
	vx, vy, vz, vyaw := k.commandVelocity()
	k.x += vx * dt
	k.y += vy * dt
	k.z += vz * dt
	k.yaw += vyaw * dt
	if k.y < 0 {
		k.y = 0
	}
	return Setpoint{X: k.x, Y: k.y, Z: k.z, Vx: vx, Vy: vy, Vz: vz, Yaw: k.yaw}
}

// Snapshot freezes the current position and commanded velocity into a
// pure rollout function of absolute simulation time, mirroring
// CustomWalker.Snapshot: lookahead (MPC's horizon, in particular)
// assumes the operator holds the current keys down for the rest of
// the horizon rather than releasing them, and must not perturb the
// live channel. now is the simulation time the snapshot was taken at.
func (k *KeyboardChannel) Snapshot(now float64) TrajectoryFn {
	x0, y0, z0, yaw0 := k.x, k.y, k.z, k.yaw
	vx, vy, vz, vyaw := k.commandVelocity()

	rollout := func(deltaT float64) Setpoint {
		x := x0 + vx*deltaT
		y := y0 + vy*deltaT
		if y < 0 {
			y = 0
		}
		z := z0 + vz*deltaT
		yaw := yaw0 + vyaw*deltaT
		return Setpoint{X: x, Y: y, Z: z, Vx: vx, Vy: vy, Vz: vz, Yaw: yaw}
	}

	return TrajectoryFn{frozen: func(t float64) Setpoint { return rollout(t - now) }}
}
