// Package ecat drives MKS EtherCAT mass flow controllers over a raw
// link-layer socket, without an EtherCAT master stack.
//
// A Session talks to a single slave by hand-building Ethernet frames that
// carry EtherCAT SDO requests. Every operation is a two-phase exchange: a
// prepare frame primes the slave's mailbox, and a run frame executes the
// primed upload or download. Replies are validated against the expected
// header fields, working count, and transfer index before any payload is
// trusted.
//
// The firmware's frame format has some quirks that this package preserves
// deliberately: multi-byte fields are byte-swapped on the wire, outbound
// setpoints are packed little-endian while inbound flows decode big-endian
// after the swap, and the device replies from its bound address with the
// locally administered bit set.
//
// Typical use:
//
//	cfg, err := ecat.NewSessionConfig("eth1", ecat.WithSlavePosition(0))
//	if err != nil { ... }
//	session, err := ecat.NewSession(cfg)
//	if err != nil { ... }
//	defer session.Close()
//
//	flow, err := session.Get(ctx)
//	err = session.Set(ctx, 50.0)
//
// Raw link-layer sockets require Linux and CAP_NET_RAW.
package ecat
