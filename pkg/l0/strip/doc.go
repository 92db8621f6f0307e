// Package strip provides the host side of the L0 LED strip protocol.
package strip

// The L0 strip protocol is spoken between a microcontroller driving an
// addressable LED strip and the host over a serial link.
//
// Every command is a synchronous transaction: an opcode byte, fixed or
// counted parameters, and exactly one acknowledgement byte from the
// firmware ('A' for success, 'N' for rejection). Query commands read their
// reply data before the acknowledgement. All 16-bit fields are big-endian.
//
// There is no sequencing, checksum or retransmission. A failed transaction
// is reported to the caller, who decides whether to retry.
//
// Producer: L0 firmware
// Consumer: host controller
