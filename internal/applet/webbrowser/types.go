package webbrowser

import "fmt"

// ShimKind selects which behavior variant of the web applet is active for a
// session. It is read from the argument buffer header and fixed for the
// applet's whole lifetime. The values are protocol constants.
type ShimKind uint8

const (
	ShimKindShop    ShimKind = 1
	ShimKindLogin   ShimKind = 2
	ShimKindOffline ShimKind = 3
	ShimKindShare   ShimKind = 4
	ShimKindWeb     ShimKind = 5
	ShimKindWifi    ShimKind = 6
	ShimKindLobby   ShimKind = 7
)

func (k ShimKind) String() string {
	switch k {
	case ShimKindShop:
		return "shop"
	case ShimKindLogin:
		return "login"
	case ShimKindOffline:
		return "offline"
	case ShimKindShare:
		return "share"
	case ShimKindWeb:
		return "web"
	case ShimKindWifi:
		return "wifi"
	case ShimKindLobby:
		return "lobby"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(k))
	}
}

// ExitReason is the reason a web applet session ended, reported back to the
// guest in the return value.
type ExitReason uint32

const (
	ExitReasonEndButtonPressed  ExitReason = 0
	ExitReasonBackButtonPressed ExitReason = 1
	ExitReasonExitRequested     ExitReason = 2
	ExitReasonCallbackURL       ExitReason = 3
	ExitReasonWindowClosed      ExitReason = 4
	ExitReasonErrorDialog       ExitReason = 7
)

// DocumentKind selects which logical content namespace an offline session
// reads its document from, and which argument field supplies the owning
// title ID.
type DocumentKind uint32

const (
	DocumentKindOfflineHtmlPage             DocumentKind = 1
	DocumentKindApplicationLegalInformation DocumentKind = 2
	DocumentKindSystemDataPage              DocumentKind = 3
)

// ArgTag identifies a tagged entry in the argument buffer.
type ArgTag uint32

const (
	ArgTagApplicationID  ArgTag = 0x1
	ArgTagApplicationURL ArgTag = 0x2
	ArgTagDocumentPath   ArgTag = 0x3
	ArgTagDocumentKind   ArgTag = 0x4
	ArgTagSystemDataID   ArgTag = 0x5
	ArgTagShareStartPage ArgTag = 0x6
	ArgTagWhitelist      ArgTag = 0x7
	ArgTagNews           ArgTag = 0x8
	ArgTagUserID         ArgTag = 0xE
)

// WebArgHeaderSize is the byte width of the argument buffer header. Buffers
// shorter than this cannot be decoded.
const WebArgHeaderSize = 8

// WebArgHeader is the fixed-size header at the start of the argument
// buffer: entry count at offset 0, shim kind at offset 4, the rest
// reserved.
type WebArgHeader struct {
	TotalEntries uint16
	ShimKind     ShimKind
}

const (
	tlvHeaderSize = 8

	// lastURLCapacity is the fixed capacity of the return value's URL
	// buffer. URLs are bounded upstream by the producer; behavior for
	// longer URLs is undefined.
	lastURLCapacity = 0x1000

	// ReturnValueSize is the byte width of the encoded return value.
	ReturnValueSize = 4 + lastURLCapacity + 4
)

// ReturnValue is the completion result of a web applet session.
type ReturnValue struct {
	ExitReason ExitReason
	LastURL    string
}
