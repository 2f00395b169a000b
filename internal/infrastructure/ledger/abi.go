package ledger

// globalStorageABI is the ABI of the deployed GlobalStorage contract.
const globalStorageABI = `[
  {
    "inputs": [
      {
        "components": [
          {"internalType": "string", "name": "farmerId", "type": "string"},
          {"internalType": "string", "name": "kycHash", "type": "string"},
          {"internalType": "string", "name": "lenderId", "type": "string"},
          {"internalType": "string", "name": "applicationId", "type": "string"}
        ],
        "internalType": "struct GlobalStorage.Record",
        "name": "rec",
        "type": "tuple"
      }
    ],
    "name": "addRecord",
    "outputs": [],
    "stateMutability": "nonpayable",
    "type": "function"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "internalType": "uint256", "name": "recordId", "type": "uint256"},
      {"indexed": false, "internalType": "string", "name": "farmerId", "type": "string"},
      {"indexed": false, "internalType": "string", "name": "kycHash", "type": "string"},
      {"indexed": false, "internalType": "string", "name": "lenderId", "type": "string"},
      {"indexed": false, "internalType": "string", "name": "applicationId", "type": "string"}
    ],
    "name": "RecordAdded",
    "type": "event"
  },
  {
    "inputs": [{"internalType": "uint256", "name": "id", "type": "uint256"}],
    "name": "getRecord",
    "outputs": [
      {
        "components": [
          {"internalType": "string", "name": "farmerId", "type": "string"},
          {"internalType": "string", "name": "kycHash", "type": "string"},
          {"internalType": "string", "name": "lenderId", "type": "string"},
          {"internalType": "string", "name": "applicationId", "type": "string"}
        ],
        "internalType": "struct GlobalStorage.Record",
        "name": "",
        "type": "tuple"
      }
    ],
    "stateMutability": "view",
    "type": "function"
  },
  {
    "inputs": [],
    "name": "recordCount",
    "outputs": [{"internalType": "uint256", "name": "", "type": "uint256"}],
    "stateMutability": "view",
    "type": "function"
  }
]`

const (
	methodAddRecord   = "addRecord"
	methodGetRecord   = "getRecord"
	methodRecordCount = "recordCount"
	eventRecordAdded  = "RecordAdded"
)

// globalStorageRecord mirrors GlobalStorage.Record; field names follow the
// abi package's camel-case mapping so it packs and converts directly.
type globalStorageRecord struct {
	FarmerId      string
	KycHash       string
	LenderId      string
	ApplicationId string
}
