package command

import (
	"fmt"
	"regexp"

	"github.com/annel0/chunk-inspector/internal/analysis"
	"github.com/annel0/chunk-inspector/internal/marker"
	"github.com/annel0/chunk-inspector/internal/vec"
)

// Цвета разметки чата
const (
	colorBad  = "a00"
	colorGood = "0a0"
)

const (
	msgNotAuthorized = `<color="a00">You are not authorized to use this command!</>`
	msgUsage         = `Usage: <code>/chunks in|analyze|count|mark|markall|clear</>`
	msgNotAnalyzed   = `<color="a00">The save has not been analyzed! Analyze it first with <code>/chunks analyze</>.</>`
	msgNoSave        = `<color="a00">Failed to find save! Try again.</>`
	msgLoadFailed    = `<color="a00">Failed to load save!</>`
	msgAnalyzed      = `<color="0a0">The save has been analyzed. Any subsequent changes must be reanalyzed.</>`
	msgEmptyWorld    = `<color="a00">The save has no bricks. There is nothing to analyze.</>`
	msgNoPlayer      = `<color="a00">Could not find your position!</>`
	msgEmptyChunk    = `<color="a00">This chunk has no bricks or colliders!</>`
	msgMarked        = `<color="0a0">Your chunk has been marked.</>`
	msgMarkedAll     = `<color="0a0">All chunks have been marked.</>`
	msgNothingToMark = `<color="a00">There are no chunks with bricks to mark.</>`
	msgSpawnFailed   = `<color="a00">Failed to place chunk markers!</>`
	msgCleared       = `<color="0a0">Chunk markers have been cleared.</>`
	msgInternal      = `<color="a00">An error occurred while running the command.</>`
)

func unknownSubcommand(sub string) string {
	return fmt.Sprintf("Unknown subcommand %s.", sub)
}

func inChunk(c vec.Vec2) string {
	return fmt.Sprintf("You are in chunk %s.", c)
}

func analyzedSummary(r *analysis.Result) string {
	return fmt.Sprintf("Found <b>%d bricks</> with <b>%d colliders</> in <b>%d chunks</>, <b><color=\"%s\">%d overloaded</></>.",
		r.TotalBricks, r.TotalColliders, len(r.Chunks), overColor(len(r.Over(marker.ColliderLimit)) > 0), len(r.Over(marker.ColliderLimit)))
}

func chunkCount(c vec.Vec2, s analysis.Stats) string {
	return fmt.Sprintf("There are <b>%d bricks</>, <b><color=\"%s\">%d colliders</></>, and <b><color=\"%s\">%d components</></> in the chunk %s.",
		s.Bricks, overColor(s.Colliders >= marker.ColliderLimit), s.Colliders,
		overColor(s.Components > marker.ComponentLimit), s.Components, c)
}

func clearedPartially(failed int) string {
	return fmt.Sprintf(`<color="a00">Chunk markers have been cleared, %d could not be removed.</>`, failed)
}

func overColor(over bool) string {
	if over {
		return colorBad
	}
	return colorGood
}

var markupTag = regexp.MustCompile(`<[^>]*>`)

// StripMarkup убирает теги разметки чата для вывода в консоль
func StripMarkup(msg string) string {
	return markupTag.ReplaceAllString(msg, "")
}
