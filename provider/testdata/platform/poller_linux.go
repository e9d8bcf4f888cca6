package platform

import "github.com/broady/commonizer/provider/testdata/shared"

// Poller is backed by a platform class.
type Poller = EpollPoller

type EpollPoller struct {
	fd int
}

// Conn reaches shared.Box through a platform alias.
type Conn = linuxConn

type linuxConn = shared.Handle

// Flags differ in width.
type Flags = uint32
