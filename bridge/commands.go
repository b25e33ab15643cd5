package bridge

// Bridge controller commands. Every command is sent as a text line.
const (
	// CmdVersion asks the bridge for its firmware version
	CmdVersion = "++ver"

	// CmdInterfaceClear asserts IFC, making the bridge controller-in-charge
	CmdInterfaceClear = "++ifc"

	// CmdAddress selects the GPIB address of the target instrument
	CmdAddress = "++addr"

	// CmdEOI enables or disables EOI assertion on the last byte sent
	CmdEOI = "++eoi"

	// CmdEOS selects which terminators the bridge appends to data sent to the instrument
	CmdEOS = "++eos"

	// CmdReadTimeout sets the bridge's GPIB read timeout in milliseconds
	CmdReadTimeout = "++read_tmo_ms"

	// CmdRead makes the bridge address the instrument to talk and relay its output
	CmdRead = "++read"
)

// ReadUntilEOI is the CmdRead argument that reads until the instrument asserts EOI.
const ReadUntilEOI = "eoi"

// EOSMode is the argument of CmdEOS.
type EOSMode int

// End-of-string modes understood by the bridge.
const (
	// EOSUnset leaves the bridge's current setting untouched
	EOSUnset EOSMode = -1

	// EOSCRLF appends CR+LF
	EOSCRLF EOSMode = 0

	// EOSCR appends CR
	EOSCR EOSMode = 1

	// EOSLF appends LF
	EOSLF EOSMode = 2

	// EOSNone appends nothing; trailing terminators of sent lines are dropped
	EOSNone EOSMode = 3
)
