package command

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/annel0/chunk-inspector/internal/vec"
)

// WriterReplier печатает личные сообщения в поток (консольный режим)
type WriterReplier struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriterReplier создаёт ответчик поверх w
func NewWriterReplier(w io.Writer) *WriterReplier {
	return &WriterReplier{w: w}
}

// Whisper печатает сообщение без тегов разметки
func (r *WriterReplier) Whisper(player, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.w, "[%s] %s\n", player, StripMarkup(msg))
}

// ParseLine разбирает строку консоли "<игрок> [/chunks] <подкоманда> [аргументы...]".
// Пустые строки и комментарии (#) возвращают ok=false.
func ParseLine(line string) (player string, args []string, ok bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return "", nil, false
	}
	fields := strings.Fields(line)
	player, args = fields[0], fields[1:]
	if len(args) > 0 && (args[0] == "/chunks" || args[0] == "chunks") {
		args = args[1:]
	}
	return player, args, true
}

// Teleporter - локатор, которому консоль может задать позицию игрока
type Teleporter interface {
	Update(ctx context.Context, player string, pos vec.Vec3Float) error
}

// parseTeleport разбирает "tp x y [z]"
func parseTeleport(args []string) (vec.Vec3Float, error) {
	if len(args) < 3 || len(args) > 4 {
		return vec.Vec3Float{}, fmt.Errorf("ожидается: tp x y [z]")
	}
	coords := [3]float64{}
	for i, a := range args[1:] {
		v, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return vec.Vec3Float{}, fmt.Errorf("координата %q: %w", a, err)
		}
		coords[i] = v
	}
	return vec.Vec3Float{X: coords[0], Y: coords[1], Z: coords[2]}, nil
}

// RunConsole читает команды построчно и передаёт их диспетчеру до EOF или отмены ctx.
// Строка "<игрок> tp x y [z]" перемещает игрока через tp (если он задан);
// она доступна только авторизованным игрокам.
func RunConsole(ctx context.Context, r io.Reader, d *Dispatcher, tp Teleporter) error {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		player, args, ok := ParseLine(sc.Text())
		if !ok {
			continue
		}

		if len(args) > 0 && args[0] == "tp" && tp != nil {
			if !d.Authorized(player) {
				d.reply(player, msgNotAuthorized)
				continue
			}
			pos, err := parseTeleport(args)
			if err == nil {
				err = tp.Update(ctx, player, pos)
			}
			if err != nil {
				d.reply(player, fmt.Sprintf(`<color="a00">%v</>`, err))
				continue
			}
			d.reply(player, fmt.Sprintf("Teleported to %s.", pos))
			continue
		}

		d.Handle(ctx, player, args)
	}
	return sc.Err()
}
