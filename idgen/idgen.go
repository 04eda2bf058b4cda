package idgen

import (
	"os"
	"strconv"

	"github.com/fundwit/go-commons/types"
	"github.com/sony/sonyflake"
)

// NewWorker builds a sonyflake worker. The machine id defaults to the lower bits of the private IP;
// hosts without one fall back to MACHINE_ID (or 1).
func NewWorker() *sonyflake.Sonyflake {
	if w := sonyflake.NewSonyflake(sonyflake.Settings{}); w != nil {
		return w
	}
	return sonyflake.NewSonyflake(sonyflake.Settings{MachineID: func() (uint16, error) {
		id, err := strconv.ParseUint(os.Getenv("MACHINE_ID"), 10, 16)
		if err != nil || id == 0 {
			return 1, nil
		}
		return uint16(id), nil
	}})
}

func NextID(idWorker *sonyflake.Sonyflake) types.ID {
	id, err := idWorker.NextID()
	if err != nil {
		panic(err)
	}
	return types.ID(id)
}
