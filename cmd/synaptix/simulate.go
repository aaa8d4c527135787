package main

import (
	"fmt"
	"math/big"
	"math/rand"
	"os"

	"github.com/google/uuid"
	log "github.com/inconshreveable/log15"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v2"

	"github.com/HexSyn0x0/Synaptix/common"
	"github.com/HexSyn0x0/Synaptix/ledger"
	"github.com/HexSyn0x0/Synaptix/manager"
	"github.com/HexSyn0x0/Synaptix/params"
	"github.com/HexSyn0x0/Synaptix/registry"
	"github.com/HexSyn0x0/Synaptix/rewards"
)

var (
	nodesFlag = &cli.IntFlag{
		Name:  "nodes",
		Usage: "number of operators to register",
		Value: 8,
	}
	offlineFlag = &cli.IntFlag{
		Name:  "offline",
		Usage: "number of operators that stop heartbeating after the first epoch",
		Value: 2,
	}
	epochsFlag = &cli.IntFlag{
		Name:  "epochs",
		Usage: "number of downtime epochs to simulate",
		Value: 3,
	}
	seedFlag = &cli.Int64Flag{
		Name:  "seed",
		Usage: "seed for the scenario's deterministic randomness",
		Value: 1,
	}
)

var commandSimulate = &cli.Command{
	Name:   "simulate",
	Usage:  "run a deterministic in-memory network scenario",
	Flags:  []cli.Flag{nodesFlag, offlineFlag, epochsFlag, seedFlag},
	Action: runSimulate,
}

// simNetwork wires a complete in-memory network: ledger, escrow,
// registry, rewards pool and manager, plus the privileged authorities.
type simNetwork struct {
	ledger   *ledger.Ledger
	registry *registry.Registry
	pool     *rewards.Pool
	manager  *manager.Manager

	treasury common.Address
	admin    registry.AuthContext
	slasher  registry.AuthContext
}

func newSimNetwork(rc params.RegistryConfig, mc params.ManagerConfig) (*simNetwork, error) {
	l := ledger.New()
	escrow := ledger.NewEscrow(l, common.HexToAddress("0x00000000000000000000000000005954435245"))
	reg, err := registry.New(rc, escrow)
	if err != nil {
		return nil, err
	}
	pool := rewards.NewPool(l, common.HexToAddress("0x000000000000000000000000000052455741"))
	mgr, err := manager.New(mc, reg, pool)
	if err != nil {
		return nil, err
	}
	return &simNetwork{
		ledger:   l,
		registry: reg,
		pool:     pool,
		manager:  mgr,
		treasury: common.HexToAddress("0x0000000000000000000000000000545245415355"),
		admin:    registry.NewAuthContext(common.HexToAddress("0x01"), registry.RoleAdmin, registry.RolePauser),
		slasher:  registry.NewAuthContext(common.HexToAddress("0x02"), registry.RoleSlasher),
	}, nil
}

func runSimulate(c *cli.Context) error {
	rc, mc, err := loadConfigs(c)
	if err != nil {
		return err
	}

	runID := uuid.New()
	logger := log.New("run", runID.String()[:8])

	nodes := c.Int(nodesFlag.Name)
	offline := c.Int(offlineFlag.Name)
	epochs := c.Int(epochsFlag.Name)
	if nodes <= 0 {
		return fmt.Errorf("--nodes must be positive")
	}
	if offline > nodes {
		return fmt.Errorf("--offline exceeds --nodes")
	}

	net, err := newSimNetwork(rc, mc)
	if err != nil {
		return err
	}
	rng := rand.New(rand.NewSource(c.Int64(seedFlag.Name)))

	// Operators get funded with 2-5x the minimum stake and register with
	// a random portion of it.
	operators := make([]common.Address, nodes)
	var now uint64
	for i := range operators {
		var raw [common.AddressLength]byte
		rng.Read(raw[:])
		operators[i] = common.BytesToAddress(raw[:])

		funding := new(big.Int).Mul(rc.MinimumStake, big.NewInt(int64(2+rng.Intn(4))))
		if err := net.ledger.Mint(operators[i], funding); err != nil {
			return err
		}
		stake := new(big.Int).Add(rc.MinimumStake, big.NewInt(int64(rng.Intn(100))))
		auth := registry.NewAuthContext(operators[i])
		if err := net.registry.Register(auth, now, stake); err != nil {
			return fmt.Errorf("register %s: %w", operators[i], err)
		}
		if err := net.manager.Heartbeat(auth, now); err != nil {
			return fmt.Errorf("heartbeat %s: %w", operators[i], err)
		}
	}
	if err := net.ledger.Mint(net.treasury, new(big.Int).Mul(rc.MinimumStake, big.NewInt(1000))); err != nil {
		return err
	}
	logger.Info("network bootstrapped", "nodes", nodes, "offline", offline, "epochs", epochs)

	// Everyone parks a small side-stake in the rewards pool through the
	// manager proxy; the treasury funds one reward round per epoch.
	sideStake := new(big.Int).Div(rc.MinimumStake, big.NewInt(10))
	if sideStake.Sign() > 0 {
		for _, op := range operators {
			if err := net.manager.Stake(registry.NewAuthContext(op), sideStake); err != nil {
				return fmt.Errorf("reward stake %s: %w", op, err)
			}
		}
	}

	totalSlashed := 0
	for epoch := 1; epoch <= epochs; epoch++ {
		now += mc.MaxAllowedDowntime + 1

		// The tail of the operator list goes dark; everyone else reports.
		for _, op := range operators[:nodes-offline] {
			auth := registry.NewAuthContext(op)
			if net.registry.IsNode(op) {
				if err := net.manager.Heartbeat(auth, now); err != nil {
					return fmt.Errorf("heartbeat %s: %w", op, err)
				}
				// Registry heartbeats only succeed while Active.
				if err := net.registry.Heartbeat(auth, now); err != nil && err != registry.ErrNotActive {
					return fmt.Errorf("registry heartbeat %s: %w", op, err)
				}
			}
		}

		slashed, err := net.manager.SweepAndSlash(net.slasher, now)
		if err != nil {
			return fmt.Errorf("sweep at epoch %d: %w", epoch, err)
		}
		totalSlashed += slashed

		if net.pool.TotalStaked().Sign() > 0 {
			round := new(big.Int).Div(rc.MinimumStake, big.NewInt(5))
			if err := net.pool.Fund(net.treasury, round); err != nil {
				return fmt.Errorf("fund epoch %d: %w", epoch, err)
			}
		}
		logger.Info("epoch complete", "epoch", epoch, "clock", now, "slashed", slashed)
	}

	// Collect pool rewards before the final report.
	for _, op := range operators {
		if !net.registry.IsNode(op) {
			continue
		}
		if _, err := net.manager.ClaimReward(registry.NewAuthContext(op)); err != nil {
			return fmt.Errorf("claim %s: %w", op, err)
		}
	}

	printReport(net, operators, now)
	logger.Info("simulation finished", "slashes", totalSlashed, "registered", net.registry.NodeCount())
	return nil
}

func printReport(net *simNetwork, operators []common.Address, now uint64) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Operator", "Status", "Stake", "Reputation", "Live", "Balance"})
	for _, op := range operators {
		node, err := net.registry.GetNode(op)
		if err != nil {
			table.Append([]string{op.Hex(), "gone", "-", "-", "-", net.ledger.BalanceOf(op).String()})
			continue
		}
		table.Append([]string{
			op.Hex(),
			node.Status.String(),
			node.StakedAmount.String(),
			fmt.Sprintf("%d", node.Reputation),
			fmt.Sprintf("%t", net.registry.IsLive(op, now)),
			net.ledger.BalanceOf(op).String(),
		})
	}
	table.Render()
}
