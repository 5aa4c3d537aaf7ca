// Package dlist interprets fixed-function display lists: flat sequences of
// 8-byte graphics commands referenced from a snapshot, decoded into
// wireframe draw calls.
package dlist

// Command opcodes, the high byte of the first command word.
const (
	CmdMatrix          = 0x01 // load/multiply matrix (unsupported)
	CmdViewportLight   = 0x03
	CmdVertex          = 0x04 // load vertices into the cache
	CmdSubList         = 0x06 // call or branch to another list
	CmdClearGeomMode   = 0xB6
	CmdSetGeomMode     = 0xB7
	CmdEndList         = 0xB8
	CmdSetOtherMode    = 0xB9
	CmdTexture         = 0xBB
	CmdTriangle        = 0xBF // draw one triangle
	CmdLoadSync        = 0xE6
	CmdPipeSync        = 0xE7
	CmdTileSync        = 0xE8
	CmdSetTileSize     = 0xF2
	CmdLoadBlock       = 0xF3
	CmdSetTile         = 0xF5
	CmdSetEnvColor     = 0xFB
	CmdSetCombineMode  = 0xFC
	CmdSetTextureImage = 0xFD
)

// Full first-word encodings of the two supported sub-list forms. A call
// runs the target list and resumes after this command; a branch replaces
// the cursor and never returns. Any other 0x06 encoding is a fatal format
// error.
const (
	subListCall   = 0x06000000
	subListBranch = 0x06010000
)
