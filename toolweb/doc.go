// Package toolweb drives MKS mass flow controllers through their ToolWeb
// HTTP interface.
//
// The device exposes a small web UI; this driver speaks to the same
// endpoints the UI uses. Reads go through the ToolWeb/Cmd XML poll endpoint
// (a POST, one of the firmware's quirks), writes through the undocumented
// flow_setpoint_html form handler. Gas and display settings require a
// password login first.
//
// Analog controllers (e.g. piMFC) take analog input over digital by
// default and reset themselves every few hours; the driver enables digital
// setpoints on connect and re-applies the cached setpoint when it detects a
// reboot.
package toolweb
