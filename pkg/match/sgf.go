package match

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/yourusername/gammon/pkg/game"
)

// The record format is a bracketed property list in the SGF family.
// See: https://www.red-bean.com/sgf/backgammon.html
//
// A position record:
//
//	(;FF[4]GM[6]CA[UTF-8]AP[gammon:1.0]
//	 PW[Alice]PB[Bob]
//	 AW[a][a][f]...AB[x][x][s]...
//	 PL[W]DI[31]CV[2]CO[B])
//
// A game record is the same header followed by one ;W[...]/;B[...]
// node per turn: two dice digits plus from/to letter pairs, or one of
// the literal tokens double, take, drop, resign. Points 1..24 map to
// letters a..x from each player's own perspective; y is the bar and z
// is borne off.

// FormatError reports malformed or out-of-spec record text.
type FormatError struct {
	Reason string
}

func (e *FormatError) Error() string {
	return "invalid game record: " + e.Reason
}

func formatErrf(format string, args ...interface{}) error {
	return &FormatError{Reason: fmt.Sprintf(format, args...)}
}

// ImportPosition reads a position record into a playable game. More
// than 15 checkers of either color, a game-type tag other than GM[6],
// and unbalanced brackets are all hard errors.
func ImportPosition(r io.Reader) (*game.Game, error) {
	nodes, err := readTree(r)
	if err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		return nil, formatErrf("record has no nodes")
	}
	return gameFromHeader(nodes[0])
}

// ImportGame reads a full game record and replays every turn against
// a fresh engine, so the returned game carries live state and history.
func ImportGame(r io.Reader) (*game.Game, error) {
	nodes, err := readTree(r)
	if err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		return nil, formatErrf("record has no nodes")
	}
	header := nodes[0]
	turns := nodes[1:]

	// The header may omit PL in a plain log; the first turn node then
	// names the opening player.
	if len(header["PL"]) == 0 {
		side, _, ok := turnNode(turnsFirst(turns))
		if !ok {
			return nil, formatErrf("record has neither PL nor turn nodes")
		}
		header["PL"] = []string{string(sideLetter(side))}
	}

	g, err := gameFromHeader(header)
	if err != nil {
		return nil, err
	}
	for i, n := range turns {
		if err := replayNode(g, n); err != nil {
			return nil, fmt.Errorf("turn %d: %w", i+1, err)
		}
	}
	return g, nil
}

// ExportPosition writes the current position as a single-node record.
func ExportPosition(g *game.Game) string {
	var b strings.Builder
	writeHeader(&b, nil, g)

	if c := g.CurrentPlayer(); c != game.NoColor {
		fmt.Fprintf(&b, "PL[%c]", sideLetter(c))
	}
	if d1, d2 := g.DiceValues(); d1 != 0 && len(g.RemainingMoves()) > 0 {
		fmt.Fprintf(&b, "DI[%d%d]", d1, d2)
	}
	fmt.Fprintf(&b, "CV[%d]", g.Cube().Value())
	if owner := g.Cube().Owner(); owner != game.NoColor {
		fmt.Fprintf(&b, "CO[%c]", sideLetter(owner))
	}
	b.WriteString("\n")
	writeCheckers(&b, g, game.White)
	writeCheckers(&b, g, game.Black)
	b.WriteString(")\n")
	return b.String()
}

// ExportGame writes the full game record: header, one node per
// archived turn, and the result once the game is over. A non-nil
// match contributes the length and running score.
func ExportGame(w io.Writer, m *Match, g *game.Game) error {
	var b strings.Builder
	writeHeader(&b, m, g)
	b.WriteString("\n")

	for _, rec := range g.History() {
		writeTurn(&b, rec)
	}
	if g.GameOver() {
		if res, err := g.GameResult(); err == nil {
			fmt.Fprintf(&b, ";RE[%c+%d]\n", sideLetter(res.Winner), res.Points)
		}
	}
	b.WriteString(")\n")
	_, err := io.WriteString(w, b.String())
	return err
}

func writeHeader(b *strings.Builder, m *Match, g *game.Game) {
	b.WriteString("(;FF[4]GM[6]CA[UTF-8]AP[gammon:1.0]\n")
	fmt.Fprintf(b, "PW[%s]PB[%s]", g.Player(game.White).Name, g.Player(game.Black).Name)
	if m != nil {
		fmt.Fprintf(b, "\nMI[length:%d][game:%d][ws:%d][bs:%d]",
			m.TargetScore, len(m.Games), m.Player1Score, m.Player2Score)
	}
}

// writeCheckers emits one AW/AB bracket per checker, bar and borne-off
// included.
func writeCheckers(b *strings.Builder, g *game.Game, c game.Color) {
	prop := "AW"
	if c == game.Black {
		prop = "AB"
	}
	b.WriteString(prop)
	wrote := false
	for pos := 1; pos <= game.NumPoints; pos++ {
		p, err := g.Board().GetPoint(pos)
		if err != nil || p.Color() != c {
			continue
		}
		for i := 0; i < p.Count(); i++ {
			fmt.Fprintf(b, "[%c]", pointLetter(c, pos))
			wrote = true
		}
	}
	for i := 0; i < g.Player(c).CheckersOnBar; i++ {
		b.WriteString("[y]")
		wrote = true
	}
	for i := 0; i < g.Player(c).CheckersBornOff; i++ {
		b.WriteString("[z]")
		wrote = true
	}
	if !wrote {
		b.WriteString("[]")
	}
	b.WriteString("\n")
}

func writeTurn(b *strings.Builder, rec game.TurnRecord) {
	side := sideLetter(rec.Player)
	opp := sideLetter(rec.Player.Opponent())

	switch rec.CubeEvent {
	case game.CubeDoubled:
		fmt.Fprintf(b, ";%c[double]\n", side)
	case game.CubeTaken:
		fmt.Fprintf(b, ";%c[double]\n;%c[take]\n", side, opp)
	case game.CubeDropped:
		fmt.Fprintf(b, ";%c[double]\n;%c[drop]\n", side, opp)
	}
	if rec.Forfeited {
		fmt.Fprintf(b, ";%c[resign]\n", side)
		return
	}
	if rec.Dice == [2]int{} {
		return
	}

	var moves strings.Builder
	for _, m := range rec.Moves {
		hops := make([]int, 0, len(m.Intermediates)+1)
		hops = append(hops, m.Intermediates...)
		hops = append(hops, m.To)
		from := m.From
		for _, hop := range hops {
			moves.WriteByte(fromLetter(rec.Player, from))
			moves.WriteByte(toLetter(rec.Player, hop))
			from = hop
		}
	}
	fmt.Fprintf(b, ";%c[%d%d%s]\n", side, rec.Dice[0], rec.Dice[1], moves.String())
}

// gameFromHeader builds a game from a header node's position
// properties. Absent AW/AB means the standard starting layout.
func gameFromHeader(props node) (*game.Game, error) {
	if gm := props.first("GM"); gm != "6" {
		return nil, formatErrf("game type GM[%s], want GM[6]", gm)
	}

	whiteName := props.first("PW")
	if whiteName == "" {
		whiteName = "White"
	}
	blackName := props.first("PB")
	if blackName == "" {
		blackName = "Black"
	}

	pos := game.Position{Points: make(map[int]game.PointSetup)}
	hasSetup := len(props["AW"]) > 0 || len(props["AB"]) > 0
	if hasSetup {
		if err := placeCheckers(&pos, game.White, props["AW"]); err != nil {
			return nil, err
		}
		if err := placeCheckers(&pos, game.Black, props["AB"]); err != nil {
			return nil, err
		}
	} else {
		standardPoints(pos.Points)
	}

	side, err := parseSide(props.first("PL"))
	if err != nil {
		return nil, err
	}
	pos.CurrentPlayer = side

	if di := props.first("DI"); di != "" {
		if len(di) != 2 || !isDie(di[0]) || !isDie(di[1]) {
			return nil, formatErrf("dice DI[%s]", di)
		}
		pos.Dice = [2]int{int(di[0] - '0'), int(di[1] - '0')}
	}
	if cv := props.first("CV"); cv != "" {
		v, err := strconv.Atoi(cv)
		if err != nil || v < 1 {
			return nil, formatErrf("cube value CV[%s]", cv)
		}
		pos.CubeValue = v
	}
	if co := props.first("CO"); co != "" {
		owner, err := parseSide(co)
		if err != nil {
			return nil, err
		}
		pos.CubeOwner = owner
	}

	g, err := game.NewGameFromPosition(pos, whiteName, blackName)
	if err != nil {
		return nil, formatErrf("position: %v", err)
	}
	return g, nil
}

// placeCheckers decodes one AW/AB value list. Each bracket holds the
// coordinates of one or more checkers.
func placeCheckers(pos *game.Position, c game.Color, values []string) error {
	total := 0
	for _, v := range values {
		for i := 0; i < len(v); i++ {
			total++
			if total > game.CheckersPerPlayer {
				return formatErrf("more than %d %s checkers", game.CheckersPerPlayer, c)
			}
			switch ch := v[i]; {
			case ch == 'y':
				if c == game.White {
					pos.WhiteBar++
				} else {
					pos.BlackBar++
				}
			case ch == 'z':
				if c == game.White {
					pos.WhiteOff++
				} else {
					pos.BlackOff++
				}
			default:
				p, ok := pointForLetter(c, ch)
				if !ok {
					return formatErrf("checker coordinate %q", string(ch))
				}
				ps := pos.Points[p]
				if ps.Count > 0 && ps.Color != c {
					return formatErrf("point %d holds both colors", p)
				}
				pos.Points[p] = game.PointSetup{Color: c, Count: ps.Count + 1}
			}
		}
	}
	return nil
}

func standardPoints(pts map[int]game.PointSetup) {
	pts[24] = game.PointSetup{Color: game.White, Count: 2}
	pts[13] = game.PointSetup{Color: game.White, Count: 5}
	pts[8] = game.PointSetup{Color: game.White, Count: 3}
	pts[6] = game.PointSetup{Color: game.White, Count: 5}
	pts[1] = game.PointSetup{Color: game.Black, Count: 2}
	pts[12] = game.PointSetup{Color: game.Black, Count: 5}
	pts[17] = game.PointSetup{Color: game.Black, Count: 3}
	pts[19] = game.PointSetup{Color: game.Black, Count: 5}
}

// replayNode applies one turn node to the live game.
func replayNode(g *game.Game, n node) error {
	side, value, ok := turnNode(n)
	if !ok {
		// Result and comment properties carry no state to replay.
		return nil
	}

	switch value {
	case "double":
		if g.CurrentPlayer() != side {
			return formatErrf("%s doubles out of turn", side)
		}
		if !g.OfferDouble() {
			return formatErrf("%s may not double", side)
		}
		return nil
	case "take":
		if !g.AcceptDouble() {
			return formatErrf("take with no double pending")
		}
		return nil
	case "drop":
		if !g.DeclineDouble() {
			return formatErrf("drop with no double pending")
		}
		return nil
	case "resign":
		return g.ForfeitGame(side)
	}

	if len(value) < 2 || !isDie(value[0]) || !isDie(value[1]) {
		return formatErrf("turn value %q", value)
	}
	if g.CurrentPlayer() != side {
		return formatErrf("%s moves out of turn", side)
	}
	if err := g.SetRoll(int(value[0]-'0'), int(value[1]-'0')); err != nil {
		return err
	}
	if len(value)%2 != 0 {
		return formatErrf("odd move text %q", value)
	}
	for i := 2; i < len(value); i += 2 {
		mv, err := decodeHop(g, side, value[i], value[i+1])
		if err != nil {
			return err
		}
		if !g.ExecuteMove(mv) {
			return formatErrf("illegal move %c%c for %s", value[i], value[i+1], side)
		}
	}
	if g.GameOver() {
		return nil
	}
	return g.EndTurn()
}

// decodeHop turns one from/to letter pair into a single-die move,
// inferring the die from the travel distance and, for bear-offs, from
// the remaining die values.
func decodeHop(g *game.Game, side game.Color, fromCh, toCh byte) (game.Move, error) {
	if fromCh == 'y' {
		to, ok := pointForLetter(side, toCh)
		if !ok {
			return game.Move{}, formatErrf("entry coordinate %q", string(toCh))
		}
		die := to
		if side == game.White {
			die = game.NumPoints + 1 - to
		}
		return game.NewMove(game.BarPos, to, die), nil
	}

	from, ok := pointForLetter(side, fromCh)
	if !ok {
		return game.Move{}, formatErrf("source coordinate %q", string(fromCh))
	}
	if toCh == 'z' {
		dist := from
		off := game.WhiteOffPos
		if side == game.Black {
			dist = game.NumPoints + 1 - from
			off = game.BlackOffPos
		}
		die, ok := bearOffDie(g.RemainingMoves(), dist)
		if !ok {
			return game.Move{}, formatErrf("no die bears off from %d", from)
		}
		return game.NewMove(from, off, die), nil
	}

	to, ok := pointForLetter(side, toCh)
	if !ok {
		return game.Move{}, formatErrf("target coordinate %q", string(toCh))
	}
	die := to - from
	if die < 0 {
		die = -die
	}
	return game.NewMove(from, to, die), nil
}

// bearOffDie picks the exact die for the distance, or failing that the
// smallest larger remaining die.
func bearOffDie(remaining []int, dist int) (int, bool) {
	best := 0
	for _, d := range remaining {
		if d == dist {
			return d, true
		}
		if d > dist && (best == 0 || d < best) {
			best = d
		}
	}
	return best, best != 0
}

// node is one record node's properties. Multi-bracket properties keep
// every value.
type node map[string][]string

func (n node) first(key string) string {
	if vs := n[key]; len(vs) > 0 {
		return vs[0]
	}
	return ""
}

// turnNode extracts the W/B property of a turn node.
func turnNode(n node) (game.Color, string, bool) {
	if v, ok := n["W"]; ok && len(v) > 0 {
		return game.White, v[0], true
	}
	if v, ok := n["B"]; ok && len(v) > 0 {
		return game.Black, v[0], true
	}
	return game.NoColor, "", false
}

func turnsFirst(turns []node) node {
	for _, n := range turns {
		if _, _, ok := turnNode(n); ok {
			return n
		}
	}
	return node{}
}

// readTree reads the record, checks bracket structure, and parses the
// first game tree into its nodes. A missing or unbalanced paren is a
// hard error; nested trees (variations) are not supported.
func readTree(r io.Reader) ([]node, error) {
	var content strings.Builder
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		content.WriteString(scanner.Text())
		content.WriteString("\n")
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading record: %w", err)
	}

	tree, err := extractTree(content.String())
	if err != nil {
		return nil, err
	}
	return parseNodes(tree)
}

func extractTree(content string) (string, error) {
	start := strings.IndexByte(content, '(')
	if start < 0 {
		return "", formatErrf("missing opening paren")
	}
	depth := 0
	for i := start; i < len(content); i++ {
		switch content[i] {
		case '(':
			depth++
			if depth > 1 {
				return "", formatErrf("nested game trees are not supported")
			}
		case ')':
			depth--
			if depth == 0 {
				return content[start+1 : i], nil
			}
		}
	}
	return "", formatErrf("missing closing paren")
}

// parseNodes splits tree text on ';' and scans each node for
// IDENT[value]... properties.
func parseNodes(tree string) ([]node, error) {
	var nodes []node
	for _, chunk := range strings.Split(tree, ";") {
		chunk = strings.TrimSpace(chunk)
		if chunk == "" {
			continue
		}
		n, err := parseNode(chunk)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	if len(nodes) == 0 {
		return nil, formatErrf("empty game tree")
	}
	return nodes, nil
}

func parseNode(chunk string) (node, error) {
	n := make(node)
	i := 0
	for i < len(chunk) {
		ch := chunk[i]
		if ch < 'A' || ch > 'Z' {
			i++
			continue
		}
		start := i
		for i < len(chunk) && chunk[i] >= 'A' && chunk[i] <= 'Z' {
			i++
		}
		ident := chunk[start:i]
		if i >= len(chunk) || chunk[i] != '[' {
			return nil, formatErrf("property %s has no value", ident)
		}
		for i < len(chunk) && chunk[i] == '[' {
			end := strings.IndexByte(chunk[i:], ']')
			if end < 0 {
				return nil, formatErrf("property %s has an unterminated value", ident)
			}
			n[ident] = append(n[ident], chunk[i+1:i+end])
			i += end + 1
		}
	}
	return n, nil
}

// Point letters run a..x from each player's own perspective: a player's
// 1-point is always 'a' shifted by the point number in their own
// numbering.
func pointLetter(c game.Color, pos int) byte {
	if c == game.White {
		pos = game.NumPoints + 1 - pos
	}
	return byte('a' + pos - 1)
}

func pointForLetter(c game.Color, ch byte) (int, bool) {
	if ch < 'a' || ch > 'x' {
		return 0, false
	}
	p := int(ch-'a') + 1
	if c == game.White {
		p = game.NumPoints + 1 - p
	}
	return p, true
}

func fromLetter(c game.Color, pos int) byte {
	if pos == game.BarPos {
		return 'y'
	}
	return pointLetter(c, pos)
}

func toLetter(c game.Color, pos int) byte {
	if pos < 1 || pos > game.NumPoints {
		return 'z'
	}
	return pointLetter(c, pos)
}

func sideLetter(c game.Color) byte {
	if c == game.White {
		return 'W'
	}
	return 'B'
}

func parseSide(s string) (game.Color, error) {
	switch s {
	case "W":
		return game.White, nil
	case "B":
		return game.Black, nil
	}
	return game.NoColor, formatErrf("player tag %q", s)
}

func isDie(ch byte) bool {
	return ch >= '1' && ch <= '6'
}
