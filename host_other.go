//go:build !js

package main

import "gamescale/ebitenhost"

func newGameHost() gameHost { return ebitenhost.New() }
