package helpers

import (
	"path"
	"runtime"
)

// https://stackoverflow.com/questions/25927660/how-to-get-the-current-function-name

// FuncName returns the name of the calling function (easier calling in error handlers)
// the package path is stripped, eg. "models.ReviewModel.Insert"
func FuncName() string {
	pc, _, _, ok := runtime.Caller(1)
	if !ok {
		return "?"
	}

	fn := runtime.FuncForPC(pc)
	return path.Base(fn.Name())
}
