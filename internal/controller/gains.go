package controller

import "fmt"

// gainSchema lists the authoritative set of recognised keys for one
// algorithm (spec.md §6). ParseGains rejects any raw map containing a
// key outside this set, so a malformed gain set is rejected at the
// boundary per spec.md §7 rather than silently partially applied. A
// map may name only some of the keys.
var gainSchema = map[AlgoID][]string{
	PID: {"Kp_xy", "Ki_xy", "Kd_xy", "Kp_z", "Ki_z", "Kd_z", "Kp_att", "Kd_att", "Kp_yaw", "Kd_yaw", "iMax"},
	SMC: {"lambda_xy", "lambda_z", "eta_xy", "eta_z", "phi_xy", "phi_z", "lambda_att", "eta_att", "phi_att"},
	STS: {"lambda_xy", "lambda_z", "alpha1_xy", "alpha2_xy", "alpha1_z", "alpha2_z", "lambda_att", "alpha1_att", "alpha2_att"},
	MPC: {"N", "Q_pos", "Q_vel", "R", "Kp_att", "Kd_att"},
}

// ParseGains validates a raw key->value gain map against the
// authoritative schema for algo and converts it into the corresponding
// tagged Gains variant. Unknown keys are rejected; keys absent from raw
// are not an error, and defaults is used to fill in anything raw does
// not override.
func ParseGains(algo AlgoID, raw map[string]float64, defaults Gains) (Gains, error) {
	schema, ok := gainSchema[algo]
	if !ok {
		return nil, fmt.Errorf("controller: unknown algorithm id %v", algo)
	}
	allowed := make(map[string]bool, len(schema))
	for _, k := range schema {
		allowed[k] = true
	}
	for k := range raw {
		if !allowed[k] {
			return nil, fmt.Errorf("controller: unrecognised gain key %q for %v", k, algo)
		}
	}

	switch algo {
	case PID:
		g, ok := defaults.(PIDGains)
		if !ok {
			g = DefaultPIDGains()
		}
		applyIfPresent(raw, "Kp_xy", &g.KpXY)
		applyIfPresent(raw, "Ki_xy", &g.KiXY)
		applyIfPresent(raw, "Kd_xy", &g.KdXY)
		applyIfPresent(raw, "Kp_z", &g.KpZ)
		applyIfPresent(raw, "Ki_z", &g.KiZ)
		applyIfPresent(raw, "Kd_z", &g.KdZ)
		applyIfPresent(raw, "Kp_att", &g.KpAtt)
		applyIfPresent(raw, "Kd_att", &g.KdAtt)
		applyIfPresent(raw, "Kp_yaw", &g.KpYaw)
		applyIfPresent(raw, "Kd_yaw", &g.KdYaw)
		applyIfPresent(raw, "iMax", &g.IMax)
		return g, nil
	case SMC:
		g, ok := defaults.(SMCGains)
		if !ok {
			g = DefaultSMCGains()
		}
		applyIfPresent(raw, "lambda_xy", &g.LambdaXY)
		applyIfPresent(raw, "lambda_z", &g.LambdaZ)
		applyIfPresent(raw, "eta_xy", &g.EtaXY)
		applyIfPresent(raw, "eta_z", &g.EtaZ)
		applyIfPresent(raw, "phi_xy", &g.PhiXY)
		applyIfPresent(raw, "phi_z", &g.PhiZ)
		applyIfPresent(raw, "lambda_att", &g.LambdaAtt)
		applyIfPresent(raw, "eta_att", &g.EtaAtt)
		applyIfPresent(raw, "phi_att", &g.PhiAtt)
		return g, nil
	case STS:
		g, ok := defaults.(STSGains)
		if !ok {
			g = DefaultSTSGains()
		}
		applyIfPresent(raw, "lambda_xy", &g.LambdaXY)
		applyIfPresent(raw, "lambda_z", &g.LambdaZ)
		applyIfPresent(raw, "alpha1_xy", &g.Alpha1XY)
		applyIfPresent(raw, "alpha2_xy", &g.Alpha2XY)
		applyIfPresent(raw, "alpha1_z", &g.Alpha1Z)
		applyIfPresent(raw, "alpha2_z", &g.Alpha2Z)
		applyIfPresent(raw, "lambda_att", &g.LambdaAtt)
		applyIfPresent(raw, "alpha1_att", &g.Alpha1Att)
		applyIfPresent(raw, "alpha2_att", &g.Alpha2Att)
		return g, nil
	case MPC:
		g, ok := defaults.(MPCGains)
		if !ok {
			g = DefaultMPCGains()
		}
		if n, present := raw["N"]; present {
			g.N = int(n)
		}
		applyIfPresent(raw, "Q_pos", &g.QPos)
		applyIfPresent(raw, "Q_vel", &g.QVel)
		applyIfPresent(raw, "R", &g.R)
		applyIfPresent(raw, "Kp_att", &g.KpAtt)
		applyIfPresent(raw, "Kd_att", &g.KdAtt)
		return g, nil
	default:
		return nil, fmt.Errorf("controller: unknown algorithm id %v", algo)
	}
}

func applyIfPresent(raw map[string]float64, key string, dst *float64) {
	if v, ok := raw[key]; ok {
		*dst = v
	}
}
