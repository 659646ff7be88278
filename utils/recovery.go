package utils

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"time"
)

var panicFilename = "panic_dump"

// MyRecover recovers a panicking goroutine, logs the stack and dumps it to a
// file so a crash in a background job never takes the server down silently.
func MyRecover() {
	if err := recover(); err != nil {
		var buf [4096]byte
		n := runtime.Stack(buf[:], false)
		log.Criticalf("Recovered from panic: %v\n%s", err, string(buf[:n]))
		_ = DumpPanicInfo(fmt.Sprintf("%v", err) + "\n" + string(buf[:n]))
	}
}

func DumpPanicInfo(info string) error {
	currentTime := time.Now()
	fileSuffix := currentTime.Format("20060102150405") + "_" + strconv.FormatInt(currentTime.Unix(), 10)
	fileName := panicFilename + "_" + fileSuffix
	log.Infof("Dumping panic info to %v...", fileName)
	err := os.WriteFile(fileName, []byte(info), 0666)
	if err != nil {
		log.Errorf("Unable to write panic file %v", fileName)
		return err
	}
	return nil
}
