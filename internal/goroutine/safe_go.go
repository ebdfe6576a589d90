package goroutine

import (
	"log"
	"runtime/debug"

	"github.com/ignatzorin/kp-backend/internal/logger"
)

// SafeGo запускает горутину с обработкой panic.
// Используется для фоновых задач, которые не должны ронять процесс
// (рассылка событий просмотров, запись аналитики).
func SafeGo(fn func()) {
	go func() {
		defer recoverPanic()
		fn()
	}()
}

func recoverPanic() {
	if r := recover(); r != nil {
		if logger.Log != nil {
			logger.Log.Errorf("goroutine: panic: %v\n%s", r, debug.Stack())
			return
		}
		log.Printf("goroutine: panic: %v\n%s", r, debug.Stack())
	}
}
