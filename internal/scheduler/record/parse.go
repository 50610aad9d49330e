package record

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/prezi/autoscalesim/internal/scheduler/clock"
)

// ParseJobLine parses one whitespace-separated input line of the form
// "YYYY-MM-DD HH:MM:SS <uid> <queue> <length>" into a Job. The caller is
// expected to retain the raw line separately for verbatim echo.
func ParseJobLine(line string) (*Job, error) {
	fields := strings.Fields(line)
	if len(fields) != 5 {
		return nil, errors.Errorf("expected 5 whitespace-separated fields, got %d", len(fields))
	}
	arrival, err := clock.Parse(fields[0], fields[1])
	if err != nil {
		return nil, err
	}
	queue, err := ParseQueueName(fields[3])
	if err != nil {
		return nil, err
	}
	length, err := strconv.ParseFloat(fields[4], 64)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid length %q", fields[4])
	}
	if length < 0 {
		return nil, errors.Errorf("negative length %q", fields[4])
	}
	return NewJob(JobID(fields[2]), queue, arrival, length), nil
}
