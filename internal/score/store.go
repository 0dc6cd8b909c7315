package score

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/Authcursed/Rhythm-Game/internal/game"
	"github.com/Authcursed/Rhythm-Game/internal/session"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

const schema = `
create table if not exists plays
  (
	  id text not null primary key,
	  sum text not null,
	  title text,
	  difficulty text,
	  played integer not null,
	  score integer not null,
	  max_combo integer not null,
	  rank text not null,
	  perfect integer not null,
	  good integer not null,
	  okay integer not null,
	  miss integer not null,
	  mean integer not null,
	  stdev integer not null,
	  total_error integer not null,
	  aborted integer not null,
	  global_offset integer not null,
	  inputs blob
  );
create index if not exists plays_sum on plays(sum);
`

// Store is the sqlite play history.
type Store struct {
	db     *sql.DB
	logger *log.Logger
	now    func() time.Time
}

type InputsCompact struct {
	Lane  int
	Times []time.Duration
}

// compactInputs groups press times by lane, every lane up to the highest pressed has an entry.
func compactInputs(inputs []game.Input) []InputsCompact {
	laneCount := 0
	for _, i := range inputs {
		if i.Lane >= laneCount {
			laneCount = i.Lane + 1
		}
	}
	ins := make([]InputsCompact, laneCount)
	for lane := range ins {
		ins[lane] = InputsCompact{Lane: lane, Times: []time.Duration{}}
	}
	for _, i := range inputs {
		if i.Lane < 0 {
			continue
		}
		ins[i.Lane].Times = append(ins[i.Lane].Times, i.At)
	}
	return ins
}

// uncompactInputs restores the presses in time order.
func uncompactInputs(inputs []InputsCompact) []game.Input {
	ins := []game.Input{}
	for _, i := range inputs {
		for _, t := range i.Times {
			ins = append(ins, game.Input{Lane: i.Lane, At: t})
		}
	}
	sort.SliceStable(ins, func(i, j int) bool {
		return ins[i].At < ins[j].At
	})
	return ins
}

// Open creates the database and its directory if they do not exist.
func Open(path string, logger *log.Logger) (*Store, error) {
	if nil == logger {
		logger = log.Default()
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); nil != err {
			return nil, fmt.Errorf("unable to create score directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", path)
	if nil != err {
		return nil, err
	}
	if _, err := db.Exec(schema); nil != err {
		db.Close()
		return nil, fmt.Errorf("unable to create score table: %w", err)
	}
	return &Store{db: db, logger: logger, now: time.Now}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Save(ctx context.Context, play Play) (string, error) {
	data, err := json.Marshal(compactInputs(play.Inputs))
	if nil != err {
		return "", fmt.Errorf("unable to marshal inputs: %w", err)
	}
	id := uuid.NewString()
	snap := play.Snapshot
	_, err = s.db.ExecContext(ctx, `insert into plays
		(id, sum, title, difficulty, played, score, max_combo, rank, perfect, good, okay, miss, mean, stdev, total_error, aborted, global_offset, inputs)
		values(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, play.Chart.Hash(), play.Chart.Title, play.Chart.Difficulty.Name, s.now().UnixNano(),
		snap.Score, snap.MaxCombo, string(snap.Rank),
		snap.Counts[game.Perfect], snap.Counts[game.Good], snap.Counts[game.Okay], snap.Counts[game.Miss],
		int64(snap.Mean), int64(snap.Stdev), int64(snap.TotalError), snap.Aborted, int64(play.Offset), data,
	)
	if nil != err {
		return "", fmt.Errorf("unable to save play: %w", err)
	}
	return id, nil
}

func (s *Store) Load(ctx context.Context, chart *game.Chart) ([]History, error) {
	rows, err := s.db.QueryContext(ctx, `select
		id, sum, played, score, max_combo, rank, perfect, good, okay, miss, mean, stdev, total_error, aborted, global_offset, inputs
		from plays where sum = ? order by score desc, played asc`, chart.Hash())
	if nil != err {
		return nil, fmt.Errorf("unable to load plays: %w", err)
	}
	defer rows.Close()

	histories := []History{}
	for rows.Next() {
		var h History
		var played, mean, stdev, total, offset int64
		var rank string
		var data []byte
		if err := rows.Scan(&h.ID, &h.Sum, &played, &h.Snapshot.Score, &h.Snapshot.MaxCombo, &rank,
			&h.Snapshot.Counts[game.Perfect], &h.Snapshot.Counts[game.Good], &h.Snapshot.Counts[game.Okay], &h.Snapshot.Counts[game.Miss],
			&mean, &stdev, &total, &h.Snapshot.Aborted, &offset, &data); nil != err {
			return nil, fmt.Errorf("unable to scan play: %w", err)
		}
		var ins []InputsCompact
		if err := json.Unmarshal(data, &ins); nil != err {
			s.logger.Println("unable to unmarshal input history of", h.ID, err)
			continue
		}
		h.Played = time.Unix(0, played)
		h.Snapshot.State = session.Finalized
		h.Snapshot.Rank = session.Rank(rank)
		h.Snapshot.Mean = time.Duration(mean)
		h.Snapshot.Stdev = time.Duration(stdev)
		h.Snapshot.TotalError = time.Duration(total)
		h.Offset = time.Duration(offset)
		h.Inputs = uncompactInputs(ins)
		histories = append(histories, h)
	}
	return histories, rows.Err()
}

// Best is the highest scoring completed play, aborted plays do not count.
func (s *Store) Best(ctx context.Context, chart *game.Chart) (History, bool, error) {
	histories, err := s.Load(ctx, chart)
	if nil != err {
		return History{}, false, err
	}
	for _, h := range histories {
		if !h.Snapshot.Aborted {
			return h, true, nil
		}
	}
	return History{}, false, nil
}
