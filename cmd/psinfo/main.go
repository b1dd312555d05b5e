package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/drmaq/psutil/pkg/psutil"
	"github.com/drmaq/psutil/pkg/types"
)

func main() {
	root := &cobra.Command{
		Use:   "psinfo",
		Short: "System and per-process inspection tool",
		Long: `psinfo queries swap, disk, network, session and per-process state
through the psutil library and prints it as a table, JSON or YAML.

Examples:
  psinfo swap
  psinfo disk /var
  psinfo net --kind tcp
  psinfo info 1234`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringP("output", "o", "table", "output format: table, json or yaml")
	_ = viper.BindPFlag("output", root.PersistentFlags().Lookup("output"))
	viper.SetEnvPrefix("PSINFO")
	viper.AutomaticEnv()

	root.AddCommand(swapCmd(), diskCmd(), netCmd(), psCmd(), infoCmd(), whoCmd())

	if err := root.Execute(); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}

func swapCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "swap",
		Short: "Show swap memory usage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sm, err := psutil.Default().SwapMemory()
			if err != nil {
				return err
			}
			return emit(sm, func(tw *tabwriter.Writer) {
				fmt.Fprintln(tw, "TOTAL\tUSED\tFREE\tPERCENT\tSIN\tSOUT")
				fmt.Fprintf(tw, "%s\t%s\t%s\t%.1f%%\t%s\t%s\n",
					types.Bytes(sm.Total).Humanized(), types.Bytes(sm.Used).Humanized(),
					types.Bytes(sm.Free).Humanized(), sm.UsedPercent,
					types.Bytes(sm.Sin).Humanized(), types.Bytes(sm.Sout).Humanized())
			})
		},
	}
}

func diskCmd() *cobra.Command {
	var (
		partitions bool
		all        bool
		ioStats    bool
	)
	cmd := &cobra.Command{
		Use:   "disk [path]",
		Short: "Show disk usage, partitions or device I/O counters",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sys := psutil.Default()
			switch {
			case partitions:
				parts, err := sys.DiskPartitions(all)
				if err != nil {
					return err
				}
				return emit(parts, func(tw *tabwriter.Writer) {
					fmt.Fprintln(tw, "DEVICE\tMOUNTPOINT\tFSTYPE\tOPTS")
					for _, p := range parts {
						fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p.Device, p.Mountpoint, p.Fstype, p.Opts)
					}
				})
			case ioStats:
				counters, err := sys.DiskIOCounters()
				if err != nil {
					return err
				}
				return emit(counters, func(tw *tabwriter.Writer) {
					fmt.Fprintln(tw, "DEVICE\tREADS\tWRITES\tREAD\tWRITTEN")
					for _, name := range sortedKeys(counters) {
						c := counters[name]
						fmt.Fprintf(tw, "%s\t%d\t%d\t%s\t%s\n", name, c.ReadCount, c.WriteCount,
							types.Bytes(c.ReadBytes).Humanized(), types.Bytes(c.WriteBytes).Humanized())
					}
				})
			default:
				path := "/"
				if len(args) == 1 {
					path = args[0]
				}
				du, err := sys.DiskUsage(path)
				if err != nil {
					return err
				}
				return emit(du, func(tw *tabwriter.Writer) {
					fmt.Fprintln(tw, "PATH\tTOTAL\tUSED\tFREE\tPERCENT")
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%.1f%%\n", path,
						types.Bytes(du.Total).Humanized(), types.Bytes(du.Used).Humanized(),
						types.Bytes(du.Free).Humanized(), du.UsedPercent)
				})
			}
		},
	}
	cmd.Flags().BoolVar(&partitions, "partitions", false, "list mounted partitions instead of usage")
	cmd.Flags().BoolVar(&all, "all", false, "with --partitions, include virtual filesystems")
	cmd.Flags().BoolVar(&ioStats, "io", false, "show per-device I/O counters instead of usage")
	return cmd
}

func netCmd() *cobra.Command {
	var (
		kind    string
		ioStats bool
	)
	cmd := &cobra.Command{
		Use:   "net",
		Short: "Show socket connections or per-NIC traffic counters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sys := psutil.Default()
			if ioStats {
				counters, err := sys.NetIOCountersPerNIC()
				if err != nil {
					return err
				}
				return emit(counters, func(tw *tabwriter.Writer) {
					fmt.Fprintln(tw, "NIC\tSENT\tRECV\tPKT-SENT\tPKT-RECV\tERR-IN\tERR-OUT")
					for _, name := range sortedKeys(counters) {
						c := counters[name]
						fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\t%d\n", name,
							types.Bytes(c.BytesSent).Humanized(), types.Bytes(c.BytesRecv).Humanized(),
							c.PacketsSent, c.PacketsRecv, c.Errin, c.Errout)
					}
				})
			}
			conns, err := sys.Connections(viper.GetString("kind"))
			if err != nil {
				return err
			}
			return emit(conns, func(tw *tabwriter.Writer) {
				fmt.Fprintln(tw, "PID\tFAMILY\tTYPE\tLADDR\tRADDR\tSTATUS")
				for _, c := range conns {
					fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
						c.Pid, c.Family, c.Type, fmtAddr(c.Laddr), fmtAddr(c.Raddr), c.Status)
				}
			})
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "inet", "connection kind (tcp, tcp4, udp, unix, inet, all, ...)")
	_ = viper.BindPFlag("kind", cmd.Flags().Lookup("kind"))
	cmd.Flags().BoolVar(&ioStats, "io", false, "show per-NIC traffic counters instead of connections")
	return cmd
}

type psRow struct {
	Pid     int32   `json:"pid" yaml:"pid"`
	Ppid    int32   `json:"ppid" yaml:"ppid"`
	Name    string  `json:"name" yaml:"name"`
	Status  string  `json:"status" yaml:"status"`
	Created float64 `json:"created" yaml:"created"`
}

func psCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ps",
		Short: "List processes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			procs, err := psutil.Default().Processes()
			if err != nil {
				return err
			}
			var rows []psRow
			for _, p := range procs {
				r := psRow{Pid: p.Pid(), Created: p.Ident().CreateTime}
				// a process may exit or become unreadable mid-listing;
				// keep the row with whatever fields we got
				if r.Name, err = p.Name(); psutil.IsNotFound(err) {
					continue
				}
				r.Ppid, _ = p.Ppid()
				r.Status, _ = p.Status()
				rows = append(rows, r)
			}
			return emit(rows, func(tw *tabwriter.Writer) {
				fmt.Fprintln(tw, "PID\tPPID\tSTATUS\tCREATED\tNAME")
				for _, r := range rows {
					fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%s\n",
						r.Pid, r.Ppid, r.Status, fmtCreated(r.Created), r.Name)
				}
			})
		},
	}
}

type procInfo struct {
	Pid         int32             `json:"pid" yaml:"pid"`
	Name        string            `json:"name" yaml:"name"`
	Ppid        int32             `json:"ppid" yaml:"ppid"`
	Status      string            `json:"status" yaml:"status"`
	Created     float64           `json:"created" yaml:"created"`
	CPUTimes    types.CPUTimes    `json:"cpu_times" yaml:"cpu_times"`
	UIDs        types.UserIDs     `json:"uids" yaml:"uids"`
	GIDs        types.GroupIDs    `json:"gids" yaml:"gids"`
	CtxSwitches types.CtxSwitches `json:"ctx_switches" yaml:"ctx_switches"`
	IOPriority  types.IOPriority  `json:"io_priority" yaml:"io_priority"`
	NumThreads  int               `json:"num_threads" yaml:"num_threads"`
	NumFiles    int               `json:"num_files" yaml:"num_files"`
}

func infoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info PID",
		Short: "Show details of one process",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pid, err := strconv.ParseInt(args[0], 10, 32)
			if err != nil {
				return fmt.Errorf("invalid pid %q", args[0])
			}
			p, err := psutil.Default().NewProcess(int32(pid))
			if err != nil {
				return err
			}

			info := procInfo{Pid: p.Pid(), Created: p.Ident().CreateTime}
			if info.Name, err = p.Name(); err != nil {
				return err
			}
			info.Ppid, _ = p.Ppid()
			info.Status, _ = p.Status()
			if info.CPUTimes, err = p.CPUTimes(); err != nil {
				slog.Warn("cpu times unavailable", "pid", pid, "err", err)
			}
			info.UIDs, _ = p.UIDs()
			info.GIDs, _ = p.GIDs()
			info.CtxSwitches, _ = p.NumCtxSwitches()
			if info.IOPriority, err = p.IOPriority(); err != nil {
				slog.Warn("io priority unavailable", "pid", pid, "err", err)
			}
			if threads, err := p.Threads(); err == nil {
				info.NumThreads = len(threads)
			}
			if files, err := p.OpenFiles(); err == nil {
				info.NumFiles = len(files)
			} else if psutil.IsAccessDenied(err) {
				slog.Warn("open files unavailable", "pid", pid, "err", err)
			}

			return emit(info, func(tw *tabwriter.Writer) {
				fmt.Fprintf(tw, "pid\t%d\n", info.Pid)
				fmt.Fprintf(tw, "name\t%s\n", info.Name)
				fmt.Fprintf(tw, "ppid\t%d\n", info.Ppid)
				fmt.Fprintf(tw, "status\t%s\n", info.Status)
				fmt.Fprintf(tw, "created\t%s\n", fmtCreated(info.Created))
				fmt.Fprintf(tw, "cpu\tuser %.2fs, system %.2fs\n", info.CPUTimes.User, info.CPUTimes.System)
				fmt.Fprintf(tw, "uids\t%d/%d/%d\n", info.UIDs.Real, info.UIDs.Effective, info.UIDs.Saved)
				fmt.Fprintf(tw, "gids\t%d/%d/%d\n", info.GIDs.Real, info.GIDs.Effective, info.GIDs.Saved)
				fmt.Fprintf(tw, "ctx switches\t%d voluntary, %d involuntary\n",
					info.CtxSwitches.Voluntary, info.CtxSwitches.Involuntary)
				fmt.Fprintf(tw, "io priority\tclass %d value %d\n", info.IOPriority.Class, info.IOPriority.Value)
				fmt.Fprintf(tw, "threads\t%d\n", info.NumThreads)
				fmt.Fprintf(tw, "open files\t%d\n", info.NumFiles)
			})
		},
	}
}

func whoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "who",
		Short: "Show logged-in users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			users, err := psutil.Default().Users()
			if err != nil {
				return err
			}
			return emit(users, func(tw *tabwriter.Writer) {
				fmt.Fprintln(tw, "USER\tTERMINAL\tHOST\tSTARTED")
				for _, u := range users {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", u.Name, u.Terminal, u.Host, fmtCreated(u.Started))
				}
			})
		},
	}
}

// emit renders v in the configured output format. The table callback writes
// to a tabwriter and is only invoked for the default format.
func emit(v any, table func(tw *tabwriter.Writer)) error {
	switch format := viper.GetString("output"); format {
	case "json":
		b, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(b))
		return nil
	case "yaml":
		b, err := yaml.Marshal(v)
		if err != nil {
			return err
		}
		fmt.Print(string(b))
		return nil
	case "table":
		tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		table(tw)
		return tw.Flush()
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func fmtAddr(a types.Addr) string {
	if a.IP == "" && a.Port == 0 {
		return "-"
	}
	if a.Port == 0 {
		return a.IP
	}
	return fmt.Sprintf("%s:%d", a.IP, a.Port)
}

func fmtCreated(epoch float64) string {
	if epoch == 0 {
		return "-"
	}
	return time.Unix(int64(epoch), 0).Format("2006-01-02 15:04:05")
}
