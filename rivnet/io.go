package rivnet

import (
	"encoding/gob"
	"fmt"
	"os"
)

func (n *Network) SaveGob(fp string) error {
	f, err := os.Create(fp)
	if err != nil {
		return fmt.Errorf(" rivnet.SaveGob %v", err)
	}
	if err := gob.NewEncoder(f).Encode(n); err != nil {
		return fmt.Errorf(" rivnet.SaveGob %v", err)
	}
	f.Close()
	return nil
}

func LoadGobNetwork(fp string) (*Network, error) {
	var n Network
	f, err := os.Open(fp)
	if err != nil {
		return nil, err
	}
	if err := gob.NewDecoder(f).Decode(&n); err != nil {
		return nil, err
	}
	f.Close()
	return &n, nil
}
