package system

import "errors"

var (
	errBadVelocity = errors.New("velocity is not finite")
	errBadPosition = errors.New("position would leave finite space")
	errNoBullet    = errors.New("bullet template not found")
)
