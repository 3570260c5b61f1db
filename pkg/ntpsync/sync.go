// Package ntpsync measures a server several times, steps the clock to the
// next whole second of corrected time and verifies the result.
package ntpsync

import (
	"fmt"
	"time"

	"github.com/AndrewLester/ntpstep/internal/history"
	"github.com/AndrewLester/ntpstep/internal/logging"
	"github.com/AndrewLester/ntpstep/pkg/deadline"
	"github.com/AndrewLester/ntpstep/pkg/ntp"
	"github.com/AndrewLester/ntpstep/pkg/settime"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultSamples        = 5
	DefaultSampleInterval = 50 * time.Millisecond
	DefaultVerifyDelay    = 100 * time.Millisecond

	CodeNTPError = "NTP_ERROR"
)

// Outcome is always returned, even when nothing could be measured. When the
// measurement worked but the step failed, the numbers and Code are both set.
type Outcome struct {
	Success        bool    `json:"success"`
	Message        string  `json:"message"`
	Session        string  `json:"session"`
	Server         string  `json:"server"`
	ServerIP       string  `json:"server_ip"`
	Offset         float64 `json:"offset"`
	Delay          float64 `json:"delay"`
	PreviousTime   float64 `json:"previous_time"`
	NewTime        float64 `json:"new_time"`
	T1             float64 `json:"t1"`
	T2             float64 `json:"t2"`
	T3             float64 `json:"t3"`
	T4             float64 `json:"t4"`
	Stratum        uint8   `json:"stratum"`
	RefID          string  `json:"ref_id"`
	Samples        int     `json:"samples"`
	PreSyncOffset  float64 `json:"pre_sync_offset"`
	PostSyncOffset float64 `json:"post_sync_offset"`
	Code           string  `json:"code,omitempty"`
}

// Progress is reported after each stage of a session.
type Progress struct {
	Session     string
	Stage       Stage
	Attempt     int
	Total       int
	Measurement *ntp.Measurement
	Err         error
}

type Stage string

const (
	StageSample Stage = "sample"
	StageWait   Stage = "wait"
	StageSet    Stage = "set"
	StageVerify Stage = "verify"
	StageDone   Stage = "done"
)

type Recorder interface {
	Record(history.Entry) error
}

type Syncer struct {
	Querier   ntp.Querier
	Setter    settime.TimeSetter
	Scheduler *deadline.Scheduler

	Samples        int
	SampleInterval time.Duration
	VerifyDelay    time.Duration

	// Sleep is used between samples and before verification.
	Sleep    func(time.Duration)
	Progress func(Progress)
	Recorder Recorder

	group singleflight.Group
	log   logrus.FieldLogger
}

func NewSyncer(querier ntp.Querier, setter settime.TimeSetter, log logrus.FieldLogger) *Syncer {
	return &Syncer{
		Querier:        querier,
		Setter:         setter,
		Scheduler:      deadline.NewScheduler(nil),
		Samples:        DefaultSamples,
		SampleInterval: DefaultSampleInterval,
		VerifyDelay:    DefaultVerifyDelay,
		Sleep:          time.Sleep,
		log:            logging.OrDefault(log),
	}
}

// Sync runs one session against server. Concurrent calls share a single
// session: late callers wait for the running one and get its Outcome.
func (s *Syncer) Sync(server string) *Outcome {
	v, _, shared := s.group.Do("sync", func() (any, error) {
		return s.sync(server), nil
	})
	outcome := v.(*Outcome)
	if shared {
		s.log.WithField("session", outcome.Session).Debug("joined running sync session")
	}
	return outcome
}

// Session is the result of the sampling phase.
type Session struct {
	ID       string
	Offsets  []float64
	Delays   []float64
	Last     *ntp.Measurement
	Attempts int
	LastErr  error
}

func (s *Session) MedianOffset() float64 { return Median(s.Offsets) }
func (s *Session) MedianDelay() float64  { return Median(s.Delays) }

// Sample queries server Samples times in sequence, keeping only successes.
func (s *Syncer) Sample(id, server string) *Session {
	session := &Session{ID: id, Attempts: s.Samples}
	log := s.log.WithFields(logrus.Fields{"session": id, "server": server})

	for attempt := 1; attempt <= s.Samples; attempt++ {
		s.Sleep(s.SampleInterval)
		m, err := s.Querier.Query(server)
		if err == nil {
			err = m.Usable()
		}
		s.report(Progress{Session: id, Stage: StageSample, Attempt: attempt, Total: s.Samples, Measurement: m, Err: err})
		if err != nil {
			log.WithError(err).WithFields(logrus.Fields{
				"attempt": attempt,
				"code":    ntp.CodeOf(err),
			}).Warn("ntp query failed")
			session.LastErr = err
			continue
		}

		log.WithFields(logrus.Fields{
			"attempt":   attempt,
			"offset_ms": m.Offset,
			"delay_ms":  m.Delay,
		}).Debug("ntp sample")
		session.Offsets = append(session.Offsets, m.Offset)
		session.Delays = append(session.Delays, m.Delay)
		session.Last = m
	}
	return session
}

func (s *Syncer) sync(server string) *Outcome {
	id := uuid.NewString()
	log := s.log.WithFields(logrus.Fields{"session": id, "server": server})
	clock := s.Scheduler.Clock

	outcome := &Outcome{Session: id, Server: server, PreviousTime: clock.Now()}
	defer func() {
		s.report(Progress{Session: id, Stage: StageDone})
		s.record(outcome)
	}()

	session := s.Sample(id, server)
	outcome.Samples = len(session.Offsets)
	if session.Last == nil {
		outcome.Code = CodeNTPError
		outcome.Message = fmt.Sprintf("all %d ntp queries to %s failed", s.Samples, server)
		if session.LastErr != nil {
			outcome.Message += ": " + session.LastErr.Error()
		}
		log.Error(outcome.Message)
		return outcome
	}

	offset, delay := session.MedianOffset(), session.MedianDelay()
	last := session.Last
	outcome.ServerIP = last.ServerIP
	outcome.T1, outcome.T2, outcome.T3, outcome.T4 = last.T1, last.T2, last.T3, last.T4
	outcome.Stratum = last.Stratum
	outcome.RefID = last.RefID
	outcome.Delay = delay
	outcome.PreSyncOffset = offset
	log.WithFields(logrus.Fields{
		"offset_ms": offset,
		"delay_ms":  delay,
		"samples":   outcome.Samples,
	}).Info("median measurement")

	target, waitUntil := deadline.NextSecond(clock.Now(), offset)
	if target <= 0 {
		outcome.Code = string(settime.CodeInvalidTimestamp)
		outcome.Message = fmt.Sprintf("offset %vms puts the target %vms at or before the Unix epoch", offset, target)
		outcome.PostSyncOffset = offset
		outcome.Offset = offset
		log.Error(outcome.Message)
		return outcome
	}
	s.report(Progress{Session: id, Stage: StageWait})
	var message string
	var err error
	s.Scheduler.Do(waitUntil, func() {
		message, err = s.Setter.SetTime(target)
		outcome.NewTime = clock.Now()
	})
	s.report(Progress{Session: id, Stage: StageSet, Err: err})
	if err != nil {
		outcome.Code = string(settime.CodeOf(err))
		if outcome.Code == "" {
			outcome.Code = string(settime.CodeSetTimeError)
		}
		outcome.Message = err.Error()
		outcome.PostSyncOffset = offset
		outcome.Offset = offset
		log.WithError(err).WithField("code", outcome.Code).Warn("clock step failed")
		return outcome
	}

	s.Sleep(s.VerifyDelay)
	verify, err := s.Querier.Query(server)
	if err == nil {
		err = verify.Usable()
	}
	s.report(Progress{Session: id, Stage: StageVerify, Measurement: verify, Err: err})
	if err != nil {
		log.WithError(err).Warn("verification query failed")
	} else {
		outcome.PostSyncOffset = verify.Offset
	}
	outcome.Offset = outcome.PostSyncOffset

	outcome.Success = true
	outcome.Message = fmt.Sprintf("synced from the median of %d samples: %s", outcome.Samples, message)
	log.WithFields(logrus.Fields{
		"pre_offset_ms":  outcome.PreSyncOffset,
		"post_offset_ms": outcome.PostSyncOffset,
	}).Info("sync complete")
	return outcome
}

func (s *Syncer) report(p Progress) {
	if s.Progress != nil {
		s.Progress(p)
	}
}

func (s *Syncer) record(o *Outcome) {
	if s.Recorder == nil || o.Samples == 0 {
		return
	}
	err := s.Recorder.Record(history.Entry{
		Session:        o.Session,
		Timestamp:      time.Now(),
		Server:         o.Server,
		ServerIP:       o.ServerIP,
		Offset:         o.PreSyncOffset,
		Delay:          o.Delay,
		PostSyncOffset: o.PostSyncOffset,
		Samples:        o.Samples,
		Success:        o.Success,
		Code:           o.Code,
	})
	if err != nil {
		s.log.WithError(err).WithField("session", o.Session).Warn("could not record sync history")
	}
}
