/*
 * MIT License
 *
 * Copyright (c) 2024 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Package etproto implements the session wire protocol (spec section C4):
// the discovery/handshake magic words, the dense opcode catalogue, and the
// big-endian frame codec every TCP session speaks.
package etproto

// Opcode identifies one session-protocol operation.
type Opcode uint16

const (
	// Event operations.
	OpEvGet Opcode = iota + 1
	OpEvsGet
	OpEvPut
	OpEvsPut
	OpEvNew
	OpEvsNew
	OpEvsNewGroup
	OpEvDump
	OpEvsDump
	OpEvGetLocal
	OpEvsGetLocal
	OpEvPutLocal
	OpEvsPutLocal
	OpEvNewLocal
	OpEvsNewLocal
	OpEvsNewGroupLocal
	OpEvDumpLocal
	OpEvsDumpLocal

	// Station operations.
	OpStatCreate
	OpStatRemove
	OpStatAttach
	OpStatDetach
	OpStatSetPosition
	OpStatGetPosition
	OpStatIsAttached
	OpStatExists
	OpStatSetSelectWords
	OpStatGetSelectWords
	OpStatGetLib
	OpStatGetFunc
	OpStatGetClass
	OpStatGetAttCount
	OpStatGetStatus
	OpStatGetInCount
	OpStatGetOutCount
	OpStatGetBlock
	OpStatGetUser
	OpStatGetRestore
	OpStatGetPrescale
	OpStatGetCue
	OpStatGetSelect
	OpStatSetBlock
	OpStatSetUser
	OpStatSetRestore
	OpStatSetPrescale
	OpStatSetCue

	// Attachment operations.
	OpAttPut
	OpAttGet
	OpAttDump
	OpAttMake

	// System operations.
	OpSysTmp
	OpSysTmpMax
	OpSysStat
	OpSysStatMax
	OpSysProc
	OpSysProcMax
	OpSysAtt
	OpSysAttMax
	OpSysHeartbeat
	OpSysPid
	OpSysGroup
	OpSysData
	OpSysHist
	OpSysGroups

	// Control operations.
	OpAlive
	OpWait
	OpClose
	OpForceClose
	OpWakeAttachment
	OpWakeAll
	OpKill
)

// Category groups opcodes the way etserver's dispatcher switches on first.
type Category uint8

const (
	CategoryEventOp Category = iota
	CategoryStationGetter
	CategoryStationSetter
	CategoryAttachmentCounter
	CategorySystemGetter
	CategorySystemBulk
	CategoryControl
)

// Category classifies op for dispatch, mirroring et_server.c's switch
// structure (event ops first, then station get/set, attachment counters,
// system getters/bulk dumps, then control).
func (op Opcode) Category() Category {
	switch {
	case op >= OpEvGet && op <= OpEvsDumpLocal:
		return CategoryEventOp
	case op >= OpStatCreate && op <= OpStatGetSelect:
		return CategoryStationGetter
	case op >= OpStatSetBlock && op <= OpStatSetCue:
		return CategoryStationSetter
	case op >= OpAttPut && op <= OpAttMake:
		return CategoryAttachmentCounter
	case op >= OpSysTmp && op <= OpSysPid:
		return CategorySystemGetter
	case op == OpSysGroup || op == OpSysData || op == OpSysHist || op == OpSysGroups:
		return CategorySystemBulk
	default:
		return CategoryControl
	}
}

// String returns a readable opcode name for logging.
func (op Opcode) String() string {
	if n, ok := opcodeNames[op]; ok {
		return n
	}
	return "OP_UNKNOWN"
}

var opcodeNames = map[Opcode]string{
	OpEvGet: "EV_GET", OpEvsGet: "EVS_GET", OpEvPut: "EV_PUT", OpEvsPut: "EVS_PUT",
	OpEvNew: "EV_NEW", OpEvsNew: "EVS_NEW", OpEvsNewGroup: "EVS_NEW_GROUP",
	OpEvDump: "EV_DUMP", OpEvsDump: "EVS_DUMP",
	OpEvGetLocal: "EV_GET_L", OpEvsGetLocal: "EVS_GET_L", OpEvPutLocal: "EV_PUT_L",
	OpEvsPutLocal: "EVS_PUT_L", OpEvNewLocal: "EV_NEW_L", OpEvsNewLocal: "EVS_NEW_L",
	OpEvsNewGroupLocal: "EVS_NEW_GROUP_L", OpEvDumpLocal: "EV_DUMP_L", OpEvsDumpLocal: "EVS_DUMP_L",
	OpStatCreate: "STAT_CREATE", OpStatRemove: "STAT_REMOVE", OpStatAttach: "STAT_ATTACH",
	OpStatDetach: "STAT_DETACH", OpStatSetPosition: "STAT_SET_POSITION", OpStatGetPosition: "STAT_GET_POSITION",
	OpStatIsAttached: "STAT_IS_ATTACHED", OpStatExists: "STAT_EXISTS",
	OpStatSetSelectWords: "STAT_SET_SELECT_WORDS", OpStatGetSelectWords: "STAT_GET_SELECT_WORDS",
	OpStatGetLib: "STAT_GET_LIB", OpStatGetFunc: "STAT_GET_FUNC", OpStatGetClass: "STAT_GET_CLASS",
	OpStatGetAttCount: "STAT_GET_ATT_COUNT", OpStatGetStatus: "STAT_GET_STATUS",
	OpStatGetInCount: "STAT_GET_IN_COUNT", OpStatGetOutCount: "STAT_GET_OUT_COUNT",
	OpStatGetBlock: "STAT_GET_BLOCK", OpStatGetUser: "STAT_GET_USER", OpStatGetRestore: "STAT_GET_RESTORE",
	OpStatGetPrescale: "STAT_GET_PRESCALE", OpStatGetCue: "STAT_GET_CUE", OpStatGetSelect: "STAT_GET_SELECT",
	OpStatSetBlock: "STAT_SET_BLOCK", OpStatSetUser: "STAT_SET_USER", OpStatSetRestore: "STAT_SET_RESTORE",
	OpStatSetPrescale: "STAT_SET_PRESCALE", OpStatSetCue: "STAT_SET_CUE",
	OpAttPut: "ATT_PUT", OpAttGet: "ATT_GET", OpAttDump: "ATT_DUMP", OpAttMake: "ATT_MAKE",
	OpSysTmp: "SYS_TMP", OpSysTmpMax: "SYS_TMP_MAX", OpSysStat: "SYS_STAT", OpSysStatMax: "SYS_STAT_MAX",
	OpSysProc: "SYS_PROC", OpSysProcMax: "SYS_PROC_MAX", OpSysAtt: "SYS_ATT", OpSysAttMax: "SYS_ATT_MAX",
	OpSysHeartbeat: "SYS_HEARTBEAT", OpSysPid: "SYS_PID", OpSysGroup: "SYS_GROUP",
	OpSysData: "SYS_DATA", OpSysHist: "SYS_HIST", OpSysGroups: "SYS_GROUPS",
	OpAlive: "ALIVE", OpWait: "WAIT", OpClose: "CLOSE", OpForceClose: "FORCE_CLOSE",
	OpWakeAttachment: "WAKE_ATTACHMENT", OpWakeAll: "WAKE_ALL", OpKill: "KILL",
}
