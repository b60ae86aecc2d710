// Package console detects how padmap was launched on Windows (terminal vs
// double-click) and installs a console control handler that keeps Ctrl+C
// working even though SDL3 locks the main OS thread.
package console

import (
	"log"
	"os"
	"strings"
	"sync/atomic"
	"syscall"
	"unsafe"
)

var (
	kernel32                       = syscall.NewLazyDLL("kernel32.dll")
	procGetConsoleWindow           = kernel32.NewProc("GetConsoleWindow")
	procAllocConsole               = kernel32.NewProc("AllocConsole")
	procFreeConsole                = kernel32.NewProc("FreeConsole")
	procGetStdHandle               = kernel32.NewProc("GetStdHandle")
	procCreateToolhelp32Snapshot   = kernel32.NewProc("CreateToolhelp32Snapshot")
	procProcess32First             = kernel32.NewProc("Process32First")
	procProcess32Next              = kernel32.NewProc("Process32Next")
	procOpenProcess                = kernel32.NewProc("OpenProcess")
	procQueryFullProcessImageNameW = kernel32.NewProc("QueryFullProcessImageNameW")
	procSetConsoleCtrlHandler      = kernel32.NewProc("SetConsoleCtrlHandler")
)

const (
	th32csSnapProcess        = 0x00000002
	processQueryLimitedInfo  = 0x1000
	maxPath                  = 260
	ctrlCEvent               = 0
	ctrlBreakEvent           = 1
	stdInputHandle           = ^uint32(0) - 10 + 1
	stdOutputHandle          = ^uint32(0) - 11 + 1
	stdErrorHandle           = ^uint32(0) - 12 + 1
)

type processEntry32 struct {
	Size            uint32
	Usage           uint32
	ProcessID       uint32
	DefaultHeapID   uintptr
	ModuleID        uint32
	Threads         uint32
	ParentProcessID uint32
	PriClassBase    int32
	Flags           uint32
	ExeFile         [maxPath]uint16
}

// IsRunningFromConsole reports whether padmap was started from a terminal.
// Double-clicked runs get the console freed (console builds) or never
// allocated (GUI builds); terminal runs of GUI builds get a console
// allocated with std streams redirected into it.
func IsRunningFromConsole() bool {
	if hasConsoleWindow() {
		if launchedFromExplorer() {
			procFreeConsole.Call()
			return false
		}
		return true
	}
	if launchedFromExplorer() {
		return false
	}
	procAllocConsole.Call()
	redirectStdStreams()
	return true
}

func hasConsoleWindow() bool {
	hwnd, _, _ := procGetConsoleWindow.Call()
	return hwnd != 0
}

// redirectStdStreams points os.Stdout/Stderr/Stdin at the freshly allocated
// console; Go captured the originals before the console existed.
func redirectStdStreams() {
	nStdout, _, _ := procGetStdHandle.Call(uintptr(stdOutputHandle))
	nStderr, _, _ := procGetStdHandle.Call(uintptr(stdErrorHandle))
	nStdin, _, _ := procGetStdHandle.Call(uintptr(stdInputHandle))
	if nStdout == 0 || nStderr == 0 {
		return
	}
	os.Stdout = os.NewFile(nStdout, "/dev/stdout")
	os.Stderr = os.NewFile(nStderr, "/dev/stderr")
	if nStdin != 0 {
		os.Stdin = os.NewFile(nStdin, "/dev/stdin")
	}
	log.SetOutput(os.Stderr)
}

func launchedFromExplorer() bool {
	parentPID := parentProcessID(os.Getpid())
	if parentPID == 0 {
		return false
	}
	name := processImageName(parentPID)
	for i := len(name) - 1; i >= 0; i-- {
		if name[i] == '\\' || name[i] == '/' {
			name = name[i+1:]
			break
		}
	}
	return strings.EqualFold(name, "explorer.exe")
}

func parentProcessID(pid int) int {
	handle, _, _ := procCreateToolhelp32Snapshot.Call(uintptr(th32csSnapProcess), 0)
	if handle == uintptr(syscall.InvalidHandle) {
		return 0
	}
	defer syscall.CloseHandle(syscall.Handle(handle))

	var entry processEntry32
	entry.Size = uint32(unsafe.Sizeof(entry))
	ret, _, _ := procProcess32First.Call(handle, uintptr(unsafe.Pointer(&entry)))
	for ret != 0 {
		if int(entry.ProcessID) == pid {
			return int(entry.ParentProcessID)
		}
		ret, _, _ = procProcess32Next.Call(handle, uintptr(unsafe.Pointer(&entry)))
	}
	return 0
}

func processImageName(pid int) string {
	hProcess, _, _ := procOpenProcess.Call(uintptr(processQueryLimitedInfo), 0, uintptr(pid))
	if hProcess == 0 {
		return ""
	}
	defer syscall.CloseHandle(syscall.Handle(hProcess))

	var buf [maxPath]uint16
	size := uint32(maxPath)
	ret, _, _ := procQueryFullProcessImageNameW.Call(hProcess, 0,
		uintptr(unsafe.Pointer(&buf[0])), uintptr(unsafe.Pointer(&size)))
	if ret == 0 {
		return ""
	}
	return syscall.UTF16ToString(buf[:size])
}

var handlerClosed int32

// SetupConsoleHandler installs a console control handler that closes
// shutdownChan on Ctrl+C/Ctrl+Break. The returned function re-registers the
// handler; call it after SDL init, which replaces console handlers.
func SetupConsoleHandler(shutdownChan chan struct{}) func() {
	callback := syscall.NewCallback(func(ctrlType uint32) uintptr {
		if ctrlType == ctrlCEvent || ctrlType == ctrlBreakEvent {
			if atomic.CompareAndSwapInt32(&handlerClosed, 0, 1) {
				close(shutdownChan)
			}
			return 1
		}
		return 0
	})

	register := func() {
		ret, _, _ := procSetConsoleCtrlHandler.Call(callback, 1)
		if ret == 0 {
			log.Printf("warning: failed to set console control handler")
		}
	}
	register()
	return register
}
