package discharge

import (
	"encoding/gob"
	"fmt"
	"os"
)

func (a *Archive) SaveGob(fp string) error {
	f, err := os.Create(fp)
	if err != nil {
		return fmt.Errorf(" discharge.SaveGob %v", err)
	}
	if err := gob.NewEncoder(f).Encode(a); err != nil {
		return fmt.Errorf(" discharge.SaveGob %v", err)
	}
	f.Close()
	return nil
}

func LoadGobArchive(fp string) (*Archive, error) {
	var a Archive
	f, err := os.Open(fp)
	if err != nil {
		return nil, err
	}
	if err := gob.NewDecoder(f).Decode(&a); err != nil {
		return nil, err
	}
	f.Close()
	return &a, nil
}
