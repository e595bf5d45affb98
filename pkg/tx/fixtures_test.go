package tx

import (
	"encoding/hex"
	"testing"

	"github.com/Klingon-tech/zecsend/pkg/crypto"
	"github.com/Klingon-tech/zecsend/pkg/params"
	"github.com/Klingon-tech/zecsend/pkg/types"
)

// Sample wallet: secret, address on both networks, and a recipient.
const (
	sampleSecret = "e8f32e723decf4051aefac8e2c93c9c5b214313817cdb01a1494b917c8436b35"
	samplePub    = "0339a36013301597daef41fbe593a02cc513d0b55527ec2df1050e2e8ff49c85c2"
	fromAddr     = "t1NdvKvSnnBoJ7D9nfJSX5kK7GEGNs1bY4S"
	toAddr       = "t1UYsZVJkLPeMjxEtACvSxfWuNmddpWfxzs"
	fromTestAddr = "tmEUfekwCArJoFTMEL2kFwQyrsDMCNX5ZFf"
	toTestAddr   = "tmLPctKo9j49rtCSKpwEBpLBeykiTGomGQs"

	sampleHeight = 3_150_000
	sampleTxID   = "9b3a1c7d5e2f40818a6b4c3d2e1f00112233445566778899aabbccddeeff0011"
	secondTxID   = "00112233445566778899aabbccddeeff00112233445566778899aabbccddeeff"

	sampleMemo = "=:ETH.ETH:0x1234567890abcdef1234567890abcdef12345678:0/1/0:thor:0xxxxxxxxxxxxxxx"
)

func sampleKey(t *testing.T) *crypto.PrivateKey {
	t.Helper()
	k, err := crypto.PrivateKeyFromHex(sampleSecret)
	if err != nil {
		t.Fatalf("PrivateKeyFromHex: %v", err)
	}
	return k
}

func utxo(t *testing.T, addr, txid string, index uint32, value uint64) UTXO {
	t.Helper()
	h, err := types.ParseTxID(txid)
	if err != nil {
		t.Fatalf("ParseTxID(%s): %v", txid, err)
	}
	return UTXO{Address: addr, TxID: h, Index: index, Value: value}
}

func sampleUTXO(t *testing.T) UTXO {
	return utxo(t, fromAddr, sampleTxID, 1, 100_000)
}

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	if err != nil {
		t.Fatalf("bad hex: %v", err)
	}
	return b
}

// vector pins every intermediate digest of a sample transaction.
type vector struct {
	name    string
	inputs  func(t *testing.T) []UTXO
	outputs []Output

	header, prevouts, sequences, amounts, scripts, outputsDigest string

	txin, transparent, sighash, sig []string

	raw, txid string
}

var vectors = []vector{
	{
		name:    "one input no memo",
		inputs:  func(t *testing.T) []UTXO { return []UTXO{sampleUTXO(t)} },
		outputs: []Output{PayTo(fromAddr, 40_000), PayTo(toAddr, 50_000)},

		header:        "f589284d830285e1d72ee886877d51967184de13a0082a3a3d30f1c292dcd40f",
		prevouts:      "da78e9db8a8604db2ceb8d4a0399417b04ba817dfb381fb5a1295d0902b1ef28",
		sequences:     "bbfae845a18fce3146d3a322aac622b61bd055bfa00ac9c2a4db82ceb37ff987",
		amounts:       "b94e085ff53038c73f9ee87f4787cec61c1239fd8c22437e9617a7876ca3f26e",
		scripts:       "5ad11e5b9f27fe4f193da024039289d75be2cf1092a19f885e27352886226ff0",
		outputsDigest: "739c9d860cb6ca83baccbffa146ac35492ebd82430ca2c12fcf2374d2381c945",

		txin:        []string{"50bb4d7100332cb8d97b76ac472d80d60fbde7364fb45301ac415b15540b991a"},
		transparent: []string{"b6bdc7497aff4d433588102fdb126cfa4b57e63f65f7874ad6b88f49c2bdd727"},
		sighash:     []string{"a5f8c6d1532f72a7db63ca14b9f8c6677cebb7df2b434dce9c1e4c79b6d2cb67"},
		sig:         []string{"304502210091d4b75f58f0c1b30727facfe63e9a8d10f9afcd91fb346046dab842e5c2c74f0220575165203f38dc5044d51cf7e8c140679c2d5b7ac7f78a2367830e2c71be3b24"},

		raw:  "050000800a27a726f04dec4d00000000b0103000011100ffeeddccbbaa998877665544332211001f2e3d4c6b8a81402f5e7d1c3a9b010000006b48304502210091d4b75f58f0c1b30727facfe63e9a8d10f9afcd91fb346046dab842e5c2c74f0220575165203f38dc5044d51cf7e8c140679c2d5b7ac7f78a2367830e2c71be3b2401210339a36013301597daef41fbe593a02cc513d0b55527ec2df1050e2e8ff49c85c2ffffffff02409c0000000000001976a9143442193e1bb70916e914552172cd4e2dbc9df81188ac50c30000000000001976a914751e76e8199196d454941c45d1b3a323f1433bd688ac000000",
		txid: "53ca5a1dc7e051bde17b7fed4e9b16402d77529899a467a2b3cd45e547872abd",
	},
	{
		name:    "one input with memo",
		inputs:  func(t *testing.T) []UTXO { return []UTXO{sampleUTXO(t)} },
		outputs: []Output{PayTo(fromAddr, 25_000), PayTo(toAddr, 50_000), MemoOutput(sampleMemo)},

		header:        "f589284d830285e1d72ee886877d51967184de13a0082a3a3d30f1c292dcd40f",
		prevouts:      "da78e9db8a8604db2ceb8d4a0399417b04ba817dfb381fb5a1295d0902b1ef28",
		sequences:     "bbfae845a18fce3146d3a322aac622b61bd055bfa00ac9c2a4db82ceb37ff987",
		amounts:       "b94e085ff53038c73f9ee87f4787cec61c1239fd8c22437e9617a7876ca3f26e",
		scripts:       "5ad11e5b9f27fe4f193da024039289d75be2cf1092a19f885e27352886226ff0",
		outputsDigest: "dfb7416db1b9a9ec10220bcd025ea09e413de49c5ac3d26a9709b502c7e2ae55",

		txin:        []string{"50bb4d7100332cb8d97b76ac472d80d60fbde7364fb45301ac415b15540b991a"},
		transparent: []string{"1221c4d01f3160d806f4541b7968783927674d8d765c843815a87e414616cf8d"},
		sighash:     []string{"8f85453782d3f81762a84b5c65d6d31622fc939e461a000562be946fb2728bdf"},
		sig:         []string{"3044022076e4e0cbe15145822c28fba606bd1c4ac3e1c23a9664bb66a5654d4de9442eda022054d46a5fea57be1e4765f6fc4e0d71851eadf95a6b68eb30e08f6f9a32f029da"},

		raw:  "050000800a27a726f04dec4d00000000b0103000011100ffeeddccbbaa998877665544332211001f2e3d4c6b8a81402f5e7d1c3a9b010000006a473044022076e4e0cbe15145822c28fba606bd1c4ac3e1c23a9664bb66a5654d4de9442eda022054d46a5fea57be1e4765f6fc4e0d71851eadf95a6b68eb30e08f6f9a32f029da01210339a36013301597daef41fbe593a02cc513d0b55527ec2df1050e2e8ff49c85c2ffffffff03a8610000000000001976a9143442193e1bb70916e914552172cd4e2dbc9df81188ac50c30000000000001976a914751e76e8199196d454941c45d1b3a323f1433bd688ac0000000000000000536a4c503d3a4554482e4554483a3078313233343536373839306162636465663132333435363738393061626364656631323334353637383a302f312f303a74686f723a30787878787878787878787878787878000000",
		txid: "4639ef72825d35e09c02a11541760c4eab039f45d88b01636f35e83b1c929fce",
	},
	{
		name: "two inputs zero change",
		inputs: func(t *testing.T) []UTXO {
			return []UTXO{sampleUTXO(t), utxo(t, fromAddr, secondTxID, 0, 30_000)}
		},
		outputs: []Output{PayTo(fromAddr, 0), PayTo(toAddr, 120_000)},

		header:        "f589284d830285e1d72ee886877d51967184de13a0082a3a3d30f1c292dcd40f",
		prevouts:      "d28c04da1895991edadb61c1f13791239cb8263ac8d71764dc571a18618fdbc6",
		sequences:     "7b0e9ba5bfc487e7471c657ef3cb743f90c7548c3fdcc355dc267559394c1bc1",
		amounts:       "e8ca4b9887a58a1e0c5c4bc126ea86c3bc9cabebbdfb92ca343be8ee06d46c2a",
		scripts:       "efc4f5c6a9b10e63b96eaa25915af4f36609deb8768b3b6f440fab278e662269",
		outputsDigest: "512c14942099681b32c90e3a15f362c9f20cc560fff549ba60be240ca4697a9d",

		txin: []string{
			"50bb4d7100332cb8d97b76ac472d80d60fbde7364fb45301ac415b15540b991a",
			"9e4f245f3201089f1812a6ccadb2d46b16242be7d007c939bd31145b26da9c81",
		},
		transparent: []string{
			"93d092ac603a68faa28509679796991d01179b0dc939cd66aa2033da40ba2870",
			"00fe3a4f2340627e864fef9da7984a55eb60577855f4f1fe60ff3fe403b4b4dc",
		},
		sighash: []string{
			"4e5acdeaa6889212425083a0bd0bc39fdcb37cbdc1b6d28f7e8368ad925866e7",
			"b08dded8e4b66843a7b020852b63c9530cd4572eb10cd6d7653b6011202ccf92",
		},
		sig: []string{
			"304402205630482147c8a10116099307a673d100ed17953f6d70736f44814fbe4d5c2cec0220301c1d33a946a3fa61eaa6f33c42d89d2473a82037790ca043259210e3fbddad",
			"3045022100e08df33f731ceb6b8f5cb45bd65e5a74135bca657ade938b9f0c73e6fe5254f4022014a75c5697e9ba13b3cb1163f69487ac639851c621c3b209a8f104c50756faa2",
		},

		raw:  "050000800a27a726f04dec4d00000000b0103000021100ffeeddccbbaa998877665544332211001f2e3d4c6b8a81402f5e7d1c3a9b010000006a47304402205630482147c8a10116099307a673d100ed17953f6d70736f44814fbe4d5c2cec0220301c1d33a946a3fa61eaa6f33c42d89d2473a82037790ca043259210e3fbddad01210339a36013301597daef41fbe593a02cc513d0b55527ec2df1050e2e8ff49c85c2ffffffffffeeddccbbaa99887766554433221100ffeeddccbbaa99887766554433221100000000006b483045022100e08df33f731ceb6b8f5cb45bd65e5a74135bca657ade938b9f0c73e6fe5254f4022014a75c5697e9ba13b3cb1163f69487ac639851c621c3b209a8f104c50756faa201210339a36013301597daef41fbe593a02cc513d0b55527ec2df1050e2e8ff49c85c2ffffffff0200000000000000001976a9143442193e1bb70916e914552172cd4e2dbc9df81188acc0d40100000000001976a914751e76e8199196d454941c45d1b3a323f1433bd688ac000000",
		txid: "372b278335c6fc904cc808ed5d08291b30600d07c3b910a826d44c0d10e8530b",
	},
}

var nu61 = params.NU6_1
