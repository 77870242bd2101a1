package main

import (
	"fmt"
	"log"
	"os"

	"github.com/annel0/chunk-inspector/internal/logging"
)

const version = "0.3.0"

const usage = `chunkscan - анализ коллайдеров по чанкам сохранения

Использование:
  chunkscan <команда> [флаги]

Команды:
  analyze   сводка по сохранению и перегруженные чанки
  count     статистика чанка, содержащего точку (x, y)
  gen       сгенерировать синтетическое сохранение
  import    положить файл сохранения в хранилище
  saves     список (или удаление) сохранений в хранилище
  shapes    таблица коллайдеров по формам кирпичей
  token     выпустить токен оператора для status API
  console   консоль /chunks со status API
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	if err := logging.InitDefaultLogger("chunkscan"); err != nil {
		log.Fatalf("❌ Ошибка инициализации логирования: %v", err)
	}
	defer logging.CloseDefaultLogger()

	cmd, args := os.Args[1], os.Args[2:]
	var err error
	switch cmd {
	case "analyze":
		err = runAnalyze(args)
	case "count":
		err = runCount(args)
	case "gen":
		err = runGen(args)
	case "import":
		err = runImport(args)
	case "saves":
		err = runSaves(args)
	case "shapes":
		err = runShapes(args)
	case "token":
		err = runToken(args)
	case "console":
		err = runConsole(args)
	case "version":
		fmt.Println(version)
	case "help", "-h", "--help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "неизвестная команда %q\n\n%s", cmd, usage)
		os.Exit(2)
	}

	if err != nil {
		logging.CloseDefaultLogger()
		log.Fatalf("❌ %s: %v", cmd, err)
	}
}
