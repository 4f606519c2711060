// Package fuzztests houses Go fuzz harnesses that exercise the check
// pipeline (source -> rubyparse -> cop -> fix.Rewrite). Its goal is to smoke
// test robustness and guard against panics or hangs on arbitrary inputs.
//
// Назначение: загружать байты в FileSet, прогонять их через парсер, проверку
// и переписывание.
//
// Не делает: генерацию корпусов, запись файлов, выполнение CLI.
package fuzztests
