package cli

import (
	"github.com/spf13/cobra"
)

const helpTemplate = `gfmt - Glasgow Face Matching Test trial runner

USAGE
  gfmt run --subject-id <id> --gender <g> --variant <long|short> [flags]
  gfmt check --variant <long|short> [flags]
  gfmt version

COMMANDS
  run        Present the task to one participant and record every trial
  check      Resolve the stimulus set for a variant and print its counts
  version    Show version, commit, build date

RUN FLAGS
  Participant:
    --subject-id <id>        Participant identifier (letters, digits, '.', '_', '-')
    --age <age>              Participant age
    --gender <g>             male, female or other
    --variant <v>            long or short
    --debug                  Mark the session as a debug run and log every trial

  Session:
    --force                  Overwrite existing results for this participant and variant
    --simulate               Run without a terminal, answering every trial at random

  Notifications:
    --notify-webhook <url>   OpenClaw webhook URL (default: http://127.0.0.1:18789/webhook)
    --notify-channel <name>  Notification channel (default: telegram)
    --notify-chat-id <id>    Recipient chat ID (required to enable notifications)

CONFIG FLAGS (run and check)
    --config <path>          Config file (default: gfmt.{json,yaml,yml,toml} or config/gfmt.*)
    --out-path <dir>         Results directory
    --stim-dir <dir>         Stimulus root (<stim-dir>/<variant>/<category>/*.jpg)
    --iti <duration>         Inter-trial interval (default: 500ms)
    --seed <n>               Shuffle seed; 0 draws a fresh one (default: 0)
    --record-sqlite          Also record trials to <out-path>/<subject-id>/results.db
    -v, --verbose            Enable debug logging

  Precedence: defaults < config file < GFMT_* environment < flags

KEYS
  The two configured response keys answer a trial. Escape (or Ctrl-C) ends
  the session; trials answered so far are kept.

EXIT CODES
  0   Success              Schedule finished, or participant pressed escape
  1   Error                Invalid arguments, display or input failure
  2   ConfigError          Configuration missing, malformed or invalid
  3   EmptySchedule        No stimuli found for the selected variant
  4   Persistence          Results cannot be created or written
  130 Interrupted          SIGINT or SIGTERM received

EXAMPLES
  # Run the short variant for participant P001
  gfmt run --config gfmt.yaml --subject-id P001 --age 31 --gender female --variant short

  # Verify a stimulus set before a testing day
  gfmt check --config gfmt.yaml --variant long

  # Pilot the full pipeline without a participant
  gfmt run --subject-id PILOT --gender other --variant short --simulate --seed 1
`

// SetCustomHelp configures the cobra command to use our custom help template.
func SetCustomHelp(cmd *cobra.Command) {
	cmd.SetHelpTemplate(helpTemplate)
}
